package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
)

// Store es el almacén en memoria detrás de DB_DRIVER=memory: desarrollo
// local y pruebas sin PostgreSQL. Reproduce la semántica del adaptador
// PostgreSQL que importa al motor: un mutex por fila de balance emula
// SELECT FOR UPDATE (con lock_timeout) y las transacciones acumulan sus
// escrituras para publicarlas solo en commit.
//
// Los repositorios se obtienen con Balances(), Movements(), etc. para
// lecturas fuera de transacción; las mutaciones pasan por el TxRunner.
type Store struct {
	mu sync.RWMutex

	balances    map[ledger.BalanceKey]*entity.Balance
	movements   []*entity.MovementRecord
	products    map[string]*entity.Product
	productSKUs map[string]string
	locations   map[string]*entity.Location
	sales       map[string]*entity.Sale
	saleLines   map[string][]*entity.SaleLine
	saleLineIDs map[string]*entity.SaleLine
	returns     map[string]*entity.Return
	returnLines map[string][]*entity.ReturnLine

	lockMu      sync.Mutex
	rowLocks    map[ledger.BalanceKey]*sync.Mutex
	returnLocks map[string]*sync.Mutex

	lockTimeout time.Duration
}

// NewStore construye el almacén vacío. lockTimeoutMS <= 0 usa 3000.
func NewStore(lockTimeoutMS int) *Store {
	if lockTimeoutMS <= 0 {
		lockTimeoutMS = 3000
	}
	return &Store{
		balances:    make(map[ledger.BalanceKey]*entity.Balance),
		products:    make(map[string]*entity.Product),
		productSKUs: make(map[string]string),
		locations:   make(map[string]*entity.Location),
		sales:       make(map[string]*entity.Sale),
		saleLines:   make(map[string][]*entity.SaleLine),
		saleLineIDs: make(map[string]*entity.SaleLine),
		returns:     make(map[string]*entity.Return),
		returnLines: make(map[string][]*entity.ReturnLine),
		rowLocks:    make(map[ledger.BalanceKey]*sync.Mutex),
		returnLocks: make(map[string]*sync.Mutex),
		lockTimeout: time.Duration(lockTimeoutMS) * time.Millisecond,
	}
}

// rowLock devuelve (creándolo si hace falta) el mutex de una fila de balance.
func (s *Store) rowLock(k ledger.BalanceKey) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	m, ok := s.rowLocks[k]
	if !ok {
		m = &sync.Mutex{}
		s.rowLocks[k] = m
	}
	return m
}

// returnLock devuelve el mutex de una cabecera de devolución.
func (s *Store) returnLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	m, ok := s.returnLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.returnLocks[id] = m
	}
	return m
}

// acquire toma el mutex respetando el lock_timeout configurado.
func (s *Store) acquire(m *sync.Mutex) error {
	deadline := time.Now().Add(s.lockTimeout)
	for !m.TryLock() {
		if time.Now().After(deadline) {
			return domain.ErrLockTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// balanceCopy devuelve una copia de la fila, o una en cero si no existe.
// Llamar con s.mu tomado.
func (s *Store) balanceCopy(k ledger.BalanceKey) *entity.Balance {
	if b, ok := s.balances[k]; ok {
		c := *b
		return &c
	}
	return &entity.Balance{ProductID: k.ProductID, LocationID: k.LocationID, Quantity: decimal.Zero}
}

func filterMovements(src []*entity.MovementRecord, match func(*entity.MovementRecord) bool, from, to *time.Time, limit, offset int) []*entity.MovementRecord {
	var out []*entity.MovementRecord
	for _, m := range src {
		if !match(m) {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, limit, offset)
}

func sumMovements(src []*entity.MovementRecord, productID, locationID string) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range src {
		if m.ProductID == productID && m.LocationID == locationID {
			sum = sum.Add(m.ChangeAmount)
		}
	}
	return sum
}

func copySaleLines(src []*entity.SaleLine) []*entity.SaleLine {
	out := make([]*entity.SaleLine, 0, len(src))
	for _, l := range src {
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyReturnLines(src []*entity.ReturnLine) []*entity.ReturnLine {
	out := make([]*entity.ReturnLine, 0, len(src))
	for _, l := range src {
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortBalances(out []*entity.Balance) {
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
}

func sortSalesDesc(out []*entity.Sale) {
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
}

func sortReturnsAsc(out []*entity.Return) {
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
}

func sortProducts(out []*entity.Product) {
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
}

func sortLocations(out []*entity.Location) {
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
