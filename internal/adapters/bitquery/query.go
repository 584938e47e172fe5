package bitquery

// tradesQuery pide los trades de un token en un pool, del bloque más reciente
// al más antiguo. El caller invierte el orden antes de procesar.
const tradesQuery = `
query ($network: evm_network, $limit: Int!, $offset: Int, $token: String!, $pool: String!) {
  EVM(network: $network, dataset: combined) {
    DEXTradeByTokens(
      orderBy: {descending: Block_Number}
      limit: {count: $limit, offset: $offset}
      where: {Trade: {Currency: {SmartContract: {is: $token}}, Dex: {Pair: {SmartContract: {is: $pool}}}}}
    ) {
      ChainId
      Block {
        Number
        Time
      }
      Trade {
        Dex {
          ProtocolName
          Pair {
            SmartContract
          }
        }
        Seller
        Buyer
        Amount
        Currency {
          SmartContract
          Symbol
        }
        Price
        Side {
          Amount
          Currency {
            SmartContract
            Symbol
          }
        }
      }
      Transaction {
        Hash
        From
      }
    }
  }
}
`
