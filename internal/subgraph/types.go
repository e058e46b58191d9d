package subgraph

// Numeric subgraph fields arrive as decimal strings and are kept that way.

type EntityRef struct {
	ID string `json:"id"`
}

// Position is the subgraph view of a position NFT.
type Position struct {
	Pool                *EntityRef `json:"pool"`
	DepositedToken0     string     `json:"depositedToken0"`
	DepositedToken1     string     `json:"depositedToken1"`
	Token0              *EntityRef `json:"token0"`
	Token1              *EntityRef `json:"token1"`
	CollectedFeesToken0 string     `json:"collectedFeesToken0"`
	CollectedFeesToken1 string     `json:"collectedFeesToken1"`
	Liquidity           string     `json:"liquidity"`
}

type PoolDayData struct {
	ID                   string `json:"id"`
	Date                 int64  `json:"date"`
	Liquidity            string `json:"liquidity"`
	SqrtPrice            string `json:"sqrtPrice"`
	Token0Price          string `json:"token0Price"`
	Token1Price          string `json:"token1Price"`
	Tick                 string `json:"tick"`
	FeeGrowthGlobal0X128 string `json:"feeGrowthGlobal0X128"`
	FeeGrowthGlobal1X128 string `json:"feeGrowthGlobal1X128"`
	TVLUSD               string `json:"tvlUSD"`
	VolumeToken0         string `json:"volumeToken0"`
	VolumeToken1         string `json:"volumeToken1"`
	VolumeUSD            string `json:"volumeUSD"`
}

type TokenName struct {
	Name string `json:"name"`
}

type PoolInfo struct {
	Token0                 TokenName `json:"token0"`
	Token1                 TokenName `json:"token1"`
	FeeTier                string    `json:"feeTier"`
	Liquidity              string    `json:"liquidity"`
	Token0Price            string    `json:"token0Price"`
	Token1Price            string    `json:"token1Price"`
	TxCount                string    `json:"txCount"`
	TotalValueLockedToken0 string    `json:"totalValueLockedToken0"`
	TotalValueLockedToken1 string    `json:"totalValueLockedToken1"`
	TotalValueLockedETH    string    `json:"totalValueLockedETH"`
	TotalValueLockedUSD    string    `json:"totalValueLockedUSD"`
	LiquidityProviderCount string    `json:"liquidityProviderCount"`
}

type FeeTierStat struct {
	FeeTier                string `json:"feeTier"`
	FeesUSD                string `json:"feesUSD"`
	TotalValueLockedToken0 string `json:"totalValueLockedToken0"`
	TotalValueLockedToken1 string `json:"totalValueLockedToken1"`
}

// FeeTierDistribution lists the pools of a pair in both token orders.
type FeeTierDistribution struct {
	AsToken0 []FeeTierStat `json:"asToken0"`
	AsToken1 []FeeTierStat `json:"asToken1"`
}

type TickInfo struct {
	LiquidityGross      string `json:"liquidityGross"`
	Price0              string `json:"price0"`
	Price1              string `json:"price1"`
	VolumeToken0        string `json:"volumeToken0"`
	VolumeToken1        string `json:"volumeToken1"`
	VolumeUSD           string `json:"volumeUSD"`
	FeesUSD             string `json:"feesUSD"`
	CollectedFeesUSD    string `json:"collectedFeesUSD"`
	CollectedFeesToken0 string `json:"collectedFeesToken0"`
	CollectedFeesToken1 string `json:"collectedFeesToken1"`
}
