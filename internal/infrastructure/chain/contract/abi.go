// Package contract holds the ABIs of the contracts the service talks to.
package contract

// RolesManagerABI is the ABI of the RolesManager contract. Only the functions
// and custom errors used by the service are listed.
const RolesManagerABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "assignMiner",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "string", "name": "reason", "type": "string"}
		],
		"name": "revokeMiner",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasMinerRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "assignRefiner",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "string", "name": "reason", "type": "string"}
		],
		"name": "revokeRefiner",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasRefinerRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "assignTransporter",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "string", "name": "reason", "type": "string"}
		],
		"name": "revokeTransporter",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasTransporterRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "assignAuditor",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "string", "name": "reason", "type": "string"}
		],
		"name": "revokeAuditor",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasAuditorRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "assignInspector",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "string", "name": "reason", "type": "string"}
		],
		"name": "revokeInspector",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasInspectorRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "assignBuyer",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "string", "name": "reason", "type": "string"}
		],
		"name": "revokeBuyer",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasBuyerRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "hasAdminRole",
		"outputs": [
			{"internalType": "bool", "name": "", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bytes32", "name": "role", "type": "bytes32"}
		],
		"name": "getRoleMemberCount",
		"outputs": [
			{"internalType": "uint256", "name": "", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "getRolesForAddress",
		"outputs": [
			{"internalType": "string[]", "name": "", "type": "string[]"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "bytes32", "name": "neededRole", "type": "bytes32"}
		],
		"name": "AccessControlUnauthorizedAccount",
		"type": "error"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "bytes32", "name": "role", "type": "bytes32"}
		],
		"name": "RolesManager__AlreadyHasRole",
		"type": "error"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "bytes32", "name": "role", "type": "bytes32"}
		],
		"name": "RolesManager__RoleNotFound",
		"type": "error"
	},
	{
		"inputs": [],
		"name": "RolesManager__InvalidAddress",
		"type": "error"
	}
]`

// NameRegistryABI is the ABI of the name service registry.
const NameRegistryABI = `[
	{
		"inputs": [
			{"internalType": "string", "name": "name", "type": "string"}
		],
		"name": "getAddress",
		"outputs": [
			{"internalType": "address", "name": "", "type": "address"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`
