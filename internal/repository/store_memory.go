package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

// memoryStore is an in-process Store for local development and tests,
// mirroring the Postgres backend's conditional-update and unique-constraint
// semantics. Atomic serializes on a single mutex and restores a snapshot on
// rollback, so transactions observe the same all-or-nothing behavior.
type memoryData struct {
	users        map[uuid.UUID]model.User
	ancestry     []model.AncestryRow
	ancestrySeq  uint64
	invites      map[uuid.UUID]model.InviteCode
	inviteByCode map[string]uuid.UUID
	products     map[uuid.UUID]model.Product
	orders       map[uuid.UUID]model.Order
	history      []model.StatusHistoryEntry
	historySeq   uint64
	userOrders   map[uuid.UUID]model.UserOrder
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:        make(map[uuid.UUID]model.User),
		invites:      make(map[uuid.UUID]model.InviteCode),
		inviteByCode: make(map[string]uuid.UUID),
		products:     make(map[uuid.UUID]model.Product),
		orders:       make(map[uuid.UUID]model.Order),
		userOrders:   make(map[uuid.UUID]model.UserOrder),
	}
}

func (d *memoryData) snapshot() *memoryData {
	cp := &memoryData{
		users:        make(map[uuid.UUID]model.User, len(d.users)),
		ancestry:     append([]model.AncestryRow(nil), d.ancestry...),
		ancestrySeq:  d.ancestrySeq,
		invites:      make(map[uuid.UUID]model.InviteCode, len(d.invites)),
		inviteByCode: make(map[string]uuid.UUID, len(d.inviteByCode)),
		products:     make(map[uuid.UUID]model.Product, len(d.products)),
		orders:       make(map[uuid.UUID]model.Order, len(d.orders)),
		history:      append([]model.StatusHistoryEntry(nil), d.history...),
		historySeq:   d.historySeq,
		userOrders:   make(map[uuid.UUID]model.UserOrder, len(d.userOrders)),
	}
	for k, v := range d.users {
		cp.users[k] = v
	}
	for k, v := range d.invites {
		cp.invites[k] = v
	}
	for k, v := range d.inviteByCode {
		cp.inviteByCode[k] = v
	}
	for k, v := range d.products {
		cp.products[k] = v
	}
	for k, v := range d.orders {
		cp.orders[k] = v
	}
	for k, v := range d.userOrders {
		cp.userOrders[k] = v
	}
	return cp
}

type memoryState struct {
	mu   sync.Mutex
	data *memoryData
}

type memoryStore struct {
	st   *memoryState
	inTx bool
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{st: &memoryState{data: newMemoryData()}}
}

func (s *memoryStore) with(fn func(d *memoryData) error) error {
	if !s.inTx {
		s.st.mu.Lock()
		defer s.st.mu.Unlock()
	}
	return fn(s.st.data)
}

func (s *memoryStore) Atomic(_ context.Context, fn func(Store) error) error {
	if s.inTx {
		// Nested Atomic joins the outer transaction.
		return fn(s)
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	snap := s.st.data.snapshot()
	if err := fn(&memoryStore{st: s.st, inTx: true}); err != nil {
		s.st.data = snap
		return err
	}
	return nil
}

func (s *memoryStore) Users() UserRepository                  { return &memUserRepo{s} }
func (s *memoryStore) Ancestry() AncestryRepository           { return &memAncestryRepo{s} }
func (s *memoryStore) InviteCodes() InviteCodeRepository      { return &memInviteCodeRepo{s} }
func (s *memoryStore) Products() ProductRepository            { return &memProductRepo{s} }
func (s *memoryStore) Orders() OrderRepository                { return &memOrderRepo{s} }
func (s *memoryStore) StatusHistory() StatusHistoryRepository { return &memStatusHistoryRepo{s} }
func (s *memoryStore) UserOrders() UserOrderRepository        { return &memUserOrderRepo{s} }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// --- users ---

type memUserRepo struct{ s *memoryStore }

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	return r.s.with(func(d *memoryData) error {
		user.ID = ensureID(user.ID)
		if _, ok := d.users[user.ID]; ok {
			return fmt.Errorf("duplicate user id %s", user.ID)
		}
		now := time.Now()
		user.CreatedAt, user.UpdatedAt = now, now
		d.users[user.ID] = *user
		return nil
	})
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.s.with(func(d *memoryData) error {
		u, ok := d.users[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *memUserRepo) SetInviter(_ context.Context, userID, inviterID uuid.UUID) error {
	return r.s.with(func(d *memoryData) error {
		u, ok := d.users[userID]
		if !ok {
			return nil // matches UPDATE affecting zero rows without error
		}
		inv := inviterID
		u.InviterID = &inv
		u.UpdatedAt = time.Now()
		d.users[userID] = u
		return nil
	})
}

func (r *memUserRepo) GrantVIP(_ context.Context, userID uuid.UUID, level int, until *time.Time) error {
	return r.s.with(func(d *memoryData) error {
		u, ok := d.users[userID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		u.IsVIP = true
		u.VIPLevel = level
		u.VIPUntil = until
		u.UpdatedAt = time.Now()
		d.users[userID] = u
		return nil
	})
}

func (r *memUserRepo) AdjustCoins(_ context.Context, userID uuid.UUID, delta int64) error {
	return r.s.with(func(d *memoryData) error {
		u, ok := d.users[userID]
		if !ok || u.CoinBalance+delta < 0 {
			return ErrNoRowsUpdated
		}
		u.CoinBalance += delta
		u.UpdatedAt = time.Now()
		d.users[userID] = u
		return nil
	})
}

// --- ancestry ---

type memAncestryRepo struct{ s *memoryStore }

func (r *memAncestryRepo) InsertBatch(_ context.Context, rows []model.AncestryRow) error {
	return r.s.with(func(d *memoryData) error {
		seen := make(map[[2]uuid.UUID]bool, len(d.ancestry))
		for _, row := range d.ancestry {
			seen[[2]uuid.UUID{row.AncestorID, row.DescendantID}] = true
		}
		for _, row := range rows {
			key := [2]uuid.UUID{row.AncestorID, row.DescendantID}
			if seen[key] {
				return fmt.Errorf("duplicate ancestry pair (%s, %s)", row.AncestorID, row.DescendantID)
			}
			seen[key] = true
		}
		now := time.Now()
		for _, row := range rows {
			d.ancestrySeq++
			row.ID = d.ancestrySeq
			row.CreatedAt = now
			d.ancestry = append(d.ancestry, row)
		}
		return nil
	})
}

func (r *memAncestryRepo) Ancestors(_ context.Context, descendantID uuid.UUID) ([]model.AncestryRow, error) {
	var out []model.AncestryRow
	err := r.s.with(func(d *memoryData) error {
		for _, row := range d.ancestry {
			if row.DescendantID == descendantID {
				out = append(out, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByDepth(out)
	return out, nil
}

func (r *memAncestryRepo) Descendants(_ context.Context, ancestorID uuid.UUID) ([]model.AncestryRow, error) {
	var out []model.AncestryRow
	err := r.s.with(func(d *memoryData) error {
		for _, row := range d.ancestry {
			if row.AncestorID == ancestorID && row.Depth > 0 {
				out = append(out, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByDepth(out)
	return out, nil
}

func (r *memAncestryRepo) HasSelfRow(_ context.Context, userID uuid.UUID) (bool, error) {
	var found bool
	err := r.s.with(func(d *memoryData) error {
		for _, row := range d.ancestry {
			if row.AncestorID == userID && row.DescendantID == userID && row.Depth == 0 {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func sortByDepth(rows []model.AncestryRow) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Depth < rows[j-1].Depth; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

// --- invite codes ---

type memInviteCodeRepo struct{ s *memoryStore }

func (r *memInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.inviteByCode[code.Code]; ok {
			return fmt.Errorf("duplicate invite code %q", code.Code)
		}
		code.ID = ensureID(code.ID)
		now := time.Now()
		code.CreatedAt, code.UpdatedAt = now, now
		d.invites[code.ID] = *code
		d.inviteByCode[code.Code] = code.ID
		return nil
	})
}

func (r *memInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	var out model.InviteCode
	err := r.s.with(func(d *memoryData) error {
		id, ok := d.inviteByCode[code]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = d.invites[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memInviteCodeRepo) MarkUsed(_ context.Context, id uuid.UUID, redeemerID uuid.UUID) error {
	return r.s.with(func(d *memoryData) error {
		code, ok := d.invites[id]
		if !ok || code.IsUsed {
			return ErrNoRowsUpdated
		}
		code.IsUsed = true
		rid := redeemerID
		code.UsedByUserID = &rid
		code.UpdatedAt = time.Now()
		d.invites[id] = code
		return nil
	})
}

func (r *memInviteCodeRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.InviteCode, error) {
	var out []model.InviteCode
	err := r.s.with(func(d *memoryData) error {
		for _, code := range d.invites {
			if code.OwnerID == ownerID {
				out = append(out, code)
			}
		}
		return nil
	})
	return out, err
}

// --- products ---

type memProductRepo struct{ s *memoryStore }

func (r *memProductRepo) Create(_ context.Context, product *model.Product) error {
	return r.s.with(func(d *memoryData) error {
		product.ID = ensureID(product.ID)
		now := time.Now()
		product.CreatedAt, product.UpdatedAt = now, now
		d.products[product.ID] = *product
		return nil
	})
}

func (r *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	var out model.Product
	err := r.s.with(func(d *memoryData) error {
		p, ok := d.products[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memProductRepo) ListActive(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	err := r.s.with(func(d *memoryData) error {
		for _, p := range d.products {
			if p.IsActive {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

// --- orders ---

type memOrderRepo struct{ s *memoryStore }

func (r *memOrderRepo) Create(_ context.Context, order *model.Order) error {
	return r.s.with(func(d *memoryData) error {
		order.ID = ensureID(order.ID)
		if err := checkExternalIDUnique(d, order.ID, order.ExternalPaymentID); err != nil {
			return err
		}
		now := time.Now()
		order.CreatedAt, order.UpdatedAt = now, now
		d.orders[order.ID] = *order
		return nil
	})
}

func checkExternalIDUnique(d *memoryData, selfID uuid.UUID, externalID *string) error {
	if externalID == nil {
		return nil
	}
	for id, o := range d.orders {
		if id != selfID && o.ExternalPaymentID != nil && *o.ExternalPaymentID == *externalID {
			return fmt.Errorf("duplicate external payment id %q", *externalID)
		}
	}
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	var out model.Order
	err := r.s.with(func(d *memoryData) error {
		o, ok := d.orders[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memOrderRepo) GetByExternalPaymentID(_ context.Context, externalID string) (*model.Order, error) {
	var out model.Order
	err := r.s.with(func(d *memoryData) error {
		for _, o := range d.orders {
			if o.ExternalPaymentID != nil && *o.ExternalPaymentID == externalID {
				out = o
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	err := r.s.with(func(d *memoryData) error {
		for _, o := range d.orders {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.OrderStatus, patch StatusPatch) error {
	return r.s.with(func(d *memoryData) error {
		o, ok := d.orders[id]
		if !ok || o.Status != from {
			return ErrNoRowsUpdated
		}
		if patch.ExternalPaymentID != nil {
			if err := checkExternalIDUnique(d, id, patch.ExternalPaymentID); err != nil {
				return err
			}
			o.ExternalPaymentID = patch.ExternalPaymentID
		}
		o.Status = to
		if patch.TransactionID != nil {
			o.TransactionID = *patch.TransactionID
		}
		if patch.PaidAt != nil {
			o.PaidAt = patch.PaidAt
		}
		if patch.PaymentData != nil {
			o.PaymentData = patch.PaymentData
		}
		o.UpdatedAt = time.Now()
		d.orders[id] = o
		return nil
	})
}

func (r *memOrderRepo) MarkChecked(_ context.Context, id uuid.UUID, checkedAt time.Time, paymentData []byte) error {
	return r.s.with(func(d *memoryData) error {
		o, ok := d.orders[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		at := checkedAt
		o.LastCheckedAt = &at
		if paymentData != nil {
			o.PaymentData = paymentData
		}
		o.UpdatedAt = time.Now()
		d.orders[id] = o
		return nil
	})
}

func (r *memOrderRepo) ListDueForExpiration(_ context.Context, now time.Time, limit int) ([]model.Order, error) {
	var out []model.Order
	err := r.s.with(func(d *memoryData) error {
		for _, o := range d.orders {
			open := o.Status == model.OrderStatusCreated || o.Status == model.OrderStatusAwaitingPayment
			if open && now.After(o.ExpireAt) {
				out = append(out, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memOrderRepo) ListByStatus(_ context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	var out []model.Order
	err := r.s.with(func(d *memoryData) error {
		for _, o := range d.orders {
			if o.Status == status {
				out = append(out, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- status history ---

type memStatusHistoryRepo struct{ s *memoryStore }

func (r *memStatusHistoryRepo) Append(_ context.Context, entry *model.StatusHistoryEntry) error {
	return r.s.with(func(d *memoryData) error {
		d.historySeq++
		entry.ID = d.historySeq
		d.history = append(d.history, *entry)
		return nil
	})
}

func (r *memStatusHistoryRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	var out []model.StatusHistoryEntry
	err := r.s.with(func(d *memoryData) error {
		for _, e := range d.history {
			if e.OrderID == orderID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

// --- user orders ---

type memUserOrderRepo struct{ s *memoryStore }

func (r *memUserOrderRepo) Create(_ context.Context, userOrder *model.UserOrder) error {
	return r.s.with(func(d *memoryData) error {
		for _, uo := range d.userOrders {
			if uo.OrderID == userOrder.OrderID {
				return fmt.Errorf("duplicate user order for order %s", userOrder.OrderID)
			}
		}
		userOrder.ID = ensureID(userOrder.ID)
		now := time.Now()
		userOrder.CreatedAt, userOrder.UpdatedAt = now, now
		d.userOrders[userOrder.ID] = *userOrder
		return nil
	})
}

func (r *memUserOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.UserOrder, error) {
	var out model.UserOrder
	err := r.s.with(func(d *memoryData) error {
		uo, ok := d.userOrders[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = uo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memUserOrderRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) (*model.UserOrder, error) {
	var out model.UserOrder
	err := r.s.with(func(d *memoryData) error {
		for _, uo := range d.userOrders {
			if uo.OrderID == orderID {
				out = uo
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memUserOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.FulfillmentStatus, completedAt *time.Time) error {
	return r.s.with(func(d *memoryData) error {
		uo, ok := d.userOrders[id]
		if !ok || uo.Status != from {
			return ErrNoRowsUpdated
		}
		uo.Status = to
		if completedAt != nil {
			uo.CompletedAt = completedAt
		}
		uo.UpdatedAt = time.Now()
		d.userOrders[id] = uo
		return nil
	})
}
