package contract

// WineryABI is the method surface of the Winery contract the gateway calls.
// The deployed artifact's ABI takes precedence; this copy serves tooling and tests.
const WineryABI = `[
  {"inputs": [], "name": "getWineLength", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [{"internalType": "uint256", "name": "_index", "type": "uint256"}],
    "name": "getWine",
    "outputs": [
      {"internalType": "address payable", "name": "", "type": "address"},
      {"internalType": "string", "name": "", "type": "string"},
      {"internalType": "string", "name": "", "type": "string"},
      {"internalType": "string", "name": "", "type": "string"},
      {"internalType": "uint256", "name": "", "type": "uint256"},
      {"internalType": "bool", "name": "", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}], "name": "tokenURI", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}], "name": "ownerOf", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "owner", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getOwners", "outputs": [{"internalType": "address[]", "name": "", "type": "address[]"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [
      {"internalType": "string", "name": "_name", "type": "string"},
      {"internalType": "string", "name": "_image", "type": "string"},
      {"internalType": "string", "name": "_description", "type": "string"},
      {"internalType": "string", "name": "_uri", "type": "string"},
      {"internalType": "uint256", "name": "_price", "type": "uint256"}
    ],
    "name": "addWine",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {"inputs": [{"internalType": "uint256", "name": "_index", "type": "uint256"}], "name": "buyWine", "outputs": [], "stateMutability": "payable", "type": "function"},
  {
    "inputs": [
      {"internalType": "uint256", "name": "_index", "type": "uint256"},
      {"internalType": "address", "name": "_receiver", "type": "address"}
    ],
    "name": "giftWine",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`
