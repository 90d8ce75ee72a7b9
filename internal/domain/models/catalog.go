package models

// Catalog describes the fixed reference data of the engine.
type Catalog struct {
	Model       string             `json:"model"`
	HouseSystem string             `json:"house_system"`
	Bodies      []BodyInfo         `json:"bodies"`
	Signs       []SignInfo         `json:"signs"`
	Aspects     []AspectDefinition `json:"aspects"`
}

type BodyInfo struct {
	Index int  `json:"index"`
	Body  Body `json:"body"`
	Node  bool `json:"node"`
}

// SignInfo covers the half-open range [Start, End).
type SignInfo struct {
	Sign  Sign    `json:"sign"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewCatalog lists every body and sign in canonical order.
func NewCatalog(model string, aspects []AspectDefinition) Catalog {
	c := Catalog{Model: model, HouseSystem: "equal", Aspects: aspects}
	for _, b := range Bodies() {
		c.Bodies = append(c.Bodies, BodyInfo{Index: int(b), Body: b, Node: b.IsNode()})
	}
	for _, s := range Signs() {
		c.Signs = append(c.Signs, SignInfo{Sign: s, Start: s.Start(), End: s.End()})
	}
	return c
}
