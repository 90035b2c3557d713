package services

import "strings"

// Network - сеть, в которой проходит криптовалютный депозит.
type Network struct {
	Name     string
	Explorer string
}

// networks - сеть и обозреватель по коду валюты. Для неизвестной валюты ссылки нет.
var networks = map[string]Network{
	"BTC":  {Name: "Bitcoin", Explorer: "https://blockstream.info/tx/"},
	"ETH":  {Name: "Ethereum", Explorer: "https://etherscan.io/tx/"},
	"USDT": {Name: "Tron (TRC-20)", Explorer: "https://tronscan.org/#/transaction/"},
	"USDC": {Name: "Ethereum (ERC-20)", Explorer: "https://etherscan.io/tx/"},
	"LTC":  {Name: "Litecoin", Explorer: "https://blockchair.com/litecoin/transaction/"},
	"TRX":  {Name: "Tron", Explorer: "https://tronscan.org/#/transaction/"},
	"SOL":  {Name: "Solana", Explorer: "https://solscan.io/tx/"},
	"BNB":  {Name: "BNB Smart Chain", Explorer: "https://bscscan.com/tx/"},
}

// LookupNetwork ищет сеть по коду валюты без учета регистра.
func LookupNetwork(currency string) (Network, bool) {
	network, ok := networks[strings.ToUpper(strings.TrimSpace(currency))]
	return network, ok
}

// ExplorerURL - ссылка на транзакцию или пустая строка.
func ExplorerURL(currency, txHash string) string {
	if txHash == "" {
		return ""
	}
	network, ok := LookupNetwork(currency)
	if !ok {
		return ""
	}
	return network.Explorer + txHash
}
