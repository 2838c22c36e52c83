package ast

import "fmt"

// Dump converts a tree into plain maps and slices with a "type" key per
// node, suitable for encoding/json.
func Dump(n Node) any {
	switch n := n.(type) {
	case *Program:
		return map[string]any{"type": "Program", "body": dumpBody(n.Body)}
	case *Declaration:
		var value any
		if n.Value != nil {
			value = string(*n.Value)
		}
		return map[string]any{"type": "Declaration", "name": n.Name, "value": value}
	case *Print:
		return map[string]any{"type": "Print", "expression": string(n.Expression)}
	case *If:
		var alt any
		if n.Alternate != nil {
			alt = Dump(n.Alternate)
		}
		return map[string]any{
			"type":       "If",
			"test":       string(n.Test),
			"consequent": dumpBody(n.Consequent),
			"alternate":  alt,
		}
	case *Repeat:
		return map[string]any{"type": "Repeat", "count": string(n.Count), "body": dumpBody(n.Body)}
	case *Block:
		return map[string]any{"type": "Block", "body": dumpBody(n.Body)}
	case nil:
		return nil
	default:
		return map[string]any{"type": fmt.Sprintf("%T", n)}
	}
}

func dumpBody(body []Statement) []any {
	out := make([]any, len(body))
	for i, s := range body {
		out[i] = Dump(s)
	}
	return out
}
