package game

import "github.com/kuitang/brink-sub001/internal/matrix"

// TurnRecord captures one resolved turn for history, tracing and the
// narrative layer. The engine only produces records; it never reads them
// back.
type TurnRecord struct {
	Turn    int            `json:"turn"`
	Matrix  matrix.Kind    `json:"matrix"`
	ActionA string         `json:"action_a"`
	ActionB string         `json:"action_b"`
	Outcome matrix.Outcome `json:"outcome"`
	Result  matrix.Result  `json:"result"`
	Before  State          `json:"before"`
	After   State          `json:"after"`
}
