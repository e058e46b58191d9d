package market

import (
	"encoding/json"

	"lpmarket/internal/dex"
)

type abiArg struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	InternalType string `json:"internalType"`
}

type abiEntry struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Inputs          []abiArg `json:"inputs"`
	Outputs         []abiArg `json:"outputs"`
	StateMutability string   `json:"stateMutability"`
}

func arg(name, typ string) abiArg {
	return abiArg{Name: name, Type: typ, InternalType: typ}
}

func view(name string, inputs []abiArg, outputs ...abiArg) abiEntry {
	return abiEntry{Type: "function", Name: name, Inputs: inputs, Outputs: outputs, StateMutability: "view"}
}

func write(name string, inputs ...abiArg) abiEntry {
	return abiEntry{Type: "function", Name: name, Inputs: inputs, Outputs: []abiArg{}, StateMutability: "nonpayable"}
}

func payable(name string, inputs ...abiArg) abiEntry {
	e := write(name, inputs...)
	e.StateMutability = "payable"
	return e
}

var (
	itemID     = []abiArg{arg("itemId", "uint256")}
	tokenIDArg = arg("tokenId", "uint256")
)

// Methods every marketplace contract exposes.
var commonEntries = []abiEntry{
	view("getAllItemIds", []abiArg{}, arg("", "uint256[]")),
	view("itemIdToTokenAddrs", itemID, arg("token0Addr", "address"), arg("token1Addr", "address")),
	view("_owner", []abiArg{}, arg("", "address")),
	write("withdrawFees", tokenIDArg),
	write("withdraw"),
}

func buildABI(entries ...abiEntry) *dex.LazyABI {
	all := append(append([]abiEntry{}, commonEntries...), entries...)
	raw, err := json.Marshal(all)
	if err != nil {
		panic("market: encode abi: " + err.Error())
	}
	return dex.NewLazyABI(string(raw))
}

var rentalABI = buildABI(
	view("itemIdToRentInfo", itemID,
		arg("originalOwner", "address"),
		arg("renter", "address"),
		arg("tokenId", "uint256"),
		arg("price", "uint256"),
		arg("duration", "uint256"),
		arg("expiryDate", "uint256"),
	),
	write("putUpNFTForRent", tokenIDArg, arg("price", "uint256"), arg("duration", "uint256")),
	write("removeNFTForRent", tokenIDArg),
	payable("rentNFT", tokenIDArg),
	write("returnNFTToOwner", tokenIDArg),
)

var saleABI = buildABI(
	view("itemIdToSaleInfo", itemID,
		arg("originalOwner", "address"),
		arg("tokenId", "uint256"),
		arg("price", "uint256"),
	),
	write("putUpNFTForSale", tokenIDArg, arg("price", "uint256")),
	write("removeNFTForSale", tokenIDArg),
	payable("buyNFT", tokenIDArg),
	write("returnNFTToOwner", tokenIDArg),
)

var auctionABI = buildABI(
	view("itemIdToAuctionInfo", itemID,
		arg("originalOwner", "address"),
		arg("highestBidder", "address"),
		arg("tokenId", "uint256"),
		arg("minBidInEther", "uint256"),
		arg("duration", "uint256"),
		arg("expiryDate", "uint256"),
	),
	write("putUpNFTForAuction", tokenIDArg, arg("minBid", "uint256"), arg("duration", "uint256")),
	write("removeNFTForAuction", tokenIDArg),
	payable("bidOnNFT", tokenIDArg),
	write("sendNFTToHighestBidder", tokenIDArg),
	write("returnNFTToOwner", tokenIDArg),
)

var optionABI = buildABI(
	view("itemIdToOptionInfo", itemID,
		arg("currentOwner", "address"),
		arg("tokenId", "uint256"),
		arg("premium", "uint256"),
		arg("costToExercise", "uint256"),
		arg("optionPayout", "uint256"),
		arg("amountToReturn", "uint256"),
		arg("tokenLong", "address"),
		arg("paymentToken", "address"),
		arg("forSale", "bool"),
		arg("expiryDate", "uint256"),
	),
	write("createLongOption", tokenIDArg,
		arg("premium", "uint256"),
		arg("duration", "uint256"),
		arg("percentage", "uint256"),
		arg("tokenLong", "address"),
	),
	write("putUpOptionForSale", tokenIDArg),
	payable("buyOption", tokenIDArg),
	write("exerciseOption", tokenIDArg),
	write("returnToOriginalOwner", tokenIDArg),
)

var swapABI = buildABI(
	view("itemIdToSwapInfo", itemID,
		arg("originalOwner", "address"),
		arg("renter", "address"),
		arg("tokenId", "uint256"),
		arg("duration", "uint256"),
		arg("expiryDate", "uint256"),
	),
	write("putUpNFTForSwap", tokenIDArg, arg("duration", "uint256")),
	write("removeNFTForSwap", tokenIDArg),
	write("offerSwap", arg("tokenIdOfExisting", "uint256"), arg("tokenIdOfOffer", "uint256")),
	write("acceptSwap", arg("tokenIdOfExisting", "uint256"), arg("tokenIdOfOffer", "uint256")),
	write("returnNFTToOwner", tokenIDArg),
)
