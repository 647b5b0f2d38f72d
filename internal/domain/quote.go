package domain

import "time"

// QuoteRequest is the validated input for a swap quote.
type QuoteRequest struct {
	SellToken  string  `json:"sellToken"`
	BuyToken   string  `json:"buyToken"`
	SellAmount string  `json:"sellAmount"` // base units, decimal string
	Taker      string  `json:"taker"`
	ChainID    ChainID `json:"chainId"`
}

// RouteFill is one hop of the aggregator's routing for a quote.
type RouteFill struct {
	Source        string `json:"source"`
	ProportionBps string `json:"proportionBps"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// FeeAmount is one fee line in a quote's fee breakdown.
type FeeAmount struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
	Type   string `json:"type"`
}

// QuoteFees is the fee breakdown returned with a quote. Absent fees are nil.
type QuoteFees struct {
	IntegratorFee *FeeAmount `json:"integratorFee,omitempty"`
	ZeroExFee     *FeeAmount `json:"zeroExFee,omitempty"`
	GasFee        *FeeAmount `json:"gasFee,omitempty"`
}

// QuoteIssues flags problems that would prevent the quoted transaction from
// succeeding as-is.
type QuoteIssues struct {
	InsufficientBalance  bool   `json:"insufficientBalance"`
	AllowanceSpender     string `json:"allowanceSpender,omitempty"`
	AllowanceActual      string `json:"allowanceActual,omitempty"`
	SimulationIncomplete bool   `json:"simulationIncomplete"`
}

// QuoteTransaction is the payload the taker must submit on-chain to execute
// the swap. Submission itself is outside this service.
type QuoteTransaction struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

// Quote is a priced swap route. Quotes are short-lived: any change to the
// sell inputs invalidates them and triggers a re-fetch.
type Quote struct {
	ID                 string           `json:"id"`
	SellToken          string           `json:"sellToken"`
	BuyToken           string           `json:"buyToken"`
	SellAmount         string           `json:"sellAmount"`
	BuyAmount          string           `json:"buyAmount"`
	MinBuyAmount       string           `json:"minBuyAmount"`
	LiquidityAvailable bool             `json:"liquidityAvailable"`
	Fees               QuoteFees        `json:"fees"`
	Route              []RouteFill      `json:"route"`
	Issues             QuoteIssues      `json:"issues"`
	Transaction        QuoteTransaction `json:"transaction"`
	FetchedAt          time.Time        `json:"fetchedAt"`
}
