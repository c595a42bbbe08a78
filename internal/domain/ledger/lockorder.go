package ledger

import "sort"

// BalanceKey identifica un balance: (producto, ubicación).
type BalanceKey struct {
	ProductID  string
	LocationID string
}

// Less define el orden total de adquisición de bloqueos.
func (k BalanceKey) Less(other BalanceKey) bool {
	if k.ProductID != other.ProductID {
		return k.ProductID < other.ProductID
	}
	return k.LocationID < other.LocationID
}

// LockOrder devuelve las claves únicas en orden ascendente (ProductID,
// LocationID). Todas las transacciones adquieren bloqueos de fila en este
// orden, por lo que dos transacciones nunca pueden formar un ciclo de espera.
func LockOrder(keys []BalanceKey) []BalanceKey {
	seen := make(map[BalanceKey]struct{}, len(keys))
	out := make([]BalanceKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
