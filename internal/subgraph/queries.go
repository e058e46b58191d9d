package subgraph

const positionQuery = `
query ($position_id: String!) {
  position(id: $position_id) {
    pool {
      id
    }
    depositedToken0
    depositedToken1
    token0 {
      id
    }
    token1 {
      id
    }
    collectedFeesToken0
    collectedFeesToken1
    liquidity
  }
}`

const poolDayDataQuery = `
query ($pool_addr: String!, $num_days: Int!) {
  poolDayDatas(where: {pool: $pool_addr}, first: $num_days, orderBy: date, orderDirection: desc) {
    id
    date
    liquidity
    sqrtPrice
    token0Price
    token1Price
    tick
    feeGrowthGlobal0X128
    feeGrowthGlobal1X128
    tvlUSD
    volumeToken0
    volumeToken1
    volumeUSD
  }
}`

const lastSwapsQuery = `
query ($max_timestamp: BigInt!, $pool_addr: String!, $num_swaps: Int!) {
  pool(id: $pool_addr) {
    swaps(where: {timestamp_lt: $max_timestamp}, first: $num_swaps, orderBy: timestamp, orderDirection: desc) {
      amount0
      amount1
      amountUSD
      timestamp
      tick
    }
  }
}`

const swapsSinceQuery = `
query ($min_timestamp: BigInt!, $pool_addr: String!, $page_size: Int!) {
  pool(id: $pool_addr) {
    swaps(where: {timestamp_gte: $min_timestamp}, orderBy: timestamp, orderDirection: asc, first: $page_size) {
      amount0
      amount1
      amountUSD
      timestamp
      tick
    }
  }
}`

const poolInfoQuery = `
query ($pool_addr: String!) {
  pool(id: $pool_addr) {
    token0 {
      name
    }
    token1 {
      name
    }
    feeTier
    liquidity
    token0Price
    token1Price
    txCount
    totalValueLockedToken0
    totalValueLockedToken1
    totalValueLockedETH
    totalValueLockedUSD
    liquidityProviderCount
  }
}`

const feeTierDistributionQuery = `
query ($token0: String!, $token1: String!) {
  asToken0: pools(orderBy: totalValueLockedToken0, orderDirection: desc, where: {token0: $token0, token1: $token1}) {
    feeTier
    feesUSD
    totalValueLockedToken0
    totalValueLockedToken1
  }
  asToken1: pools(orderBy: totalValueLockedToken0, orderDirection: desc, where: {token0: $token1, token1: $token0}) {
    feeTier
    feesUSD
    totalValueLockedToken0
    totalValueLockedToken1
  }
}`

const tickRangeQuery = `
query ($pool_addr: String!, $tickLower: BigInt!, $tickHigher: BigInt!) {
  pool(id: $pool_addr) {
    ticks(where: {tickIdx_gte: $tickLower, tickIdx_lte: $tickHigher}) {
      liquidityGross
      price0
      price1
      volumeToken0
      volumeToken1
      volumeUSD
      feesUSD
      collectedFeesUSD
      collectedFeesToken0
      collectedFeesToken1
    }
  }
}`
