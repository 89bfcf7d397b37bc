package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/domain/user"
	"github.com/google/uuid"
)

// --- Book Repository Mock ---

// MockBookRepository is a mock implementation of book.Repository.
type MockBookRepository struct {
	mu    sync.Mutex
	books map[uuid.UUID]*book.Book

	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*book.Book, error)
	DecrementInventoryFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockBookRepository() *MockBookRepository {
	return &MockBookRepository{books: make(map[uuid.UUID]*book.Book)}
}

func (m *MockBookRepository) AddBook(b *book.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
}

func (m *MockBookRepository) GetBook(id uuid.UUID) *book.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id]
}

// Snapshot returns a function restoring the repository to its current state,
// for use as a MockTransactionManager rollback.
func (m *MockBookRepository) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[uuid.UUID]*book.Book, len(m.books))
	for id, b := range m.books {
		cp := *b
		saved[id] = &cp
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.books = saved
	}
}

func (m *MockBookRepository) Create(ctx context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
	return nil
}

func (m *MockBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, domainErrors.ErrBookNotFound
	}
	return b, nil
}

func (m *MockBookRepository) List(ctx context.Context, limit, offset int) ([]*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*book.Book, 0, len(m.books))
	for _, b := range m.books {
		result = append(result, b)
	}
	return result, nil
}

func (m *MockBookRepository) Update(ctx context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return domainErrors.ErrBookNotFound
	}
	m.books[b.ID] = b
	return nil
}

func (m *MockBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return domainErrors.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *MockBookRepository) DecrementInventory(ctx context.Context, id uuid.UUID) error {
	if m.DecrementInventoryFunc != nil {
		return m.DecrementInventoryFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return domainErrors.ErrBookNotFound
	}
	if b.Inventory <= 0 {
		return domainErrors.ErrOutOfStock
	}
	b.Inventory--
	return nil
}

func (m *MockBookRepository) IncrementInventory(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return domainErrors.ErrBookNotFound
	}
	b.Inventory++
	return nil
}

// --- Borrowing Repository Mock ---

// MockBorrowingRepository is a mock implementation of borrowing.Repository.
type MockBorrowingRepository struct {
	mu         sync.Mutex
	borrowings map[uuid.UUID]*borrowing.Borrowing

	CreateFunc func(ctx context.Context, b *borrowing.Borrowing) error
}

func NewMockBorrowingRepository() *MockBorrowingRepository {
	return &MockBorrowingRepository{borrowings: make(map[uuid.UUID]*borrowing.Borrowing)}
}

func (m *MockBorrowingRepository) AddBorrowing(b *borrowing.Borrowing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.borrowings[b.ID] = b
}

// Snapshot returns a function restoring the repository to its current state.
func (m *MockBorrowingRepository) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[uuid.UUID]*borrowing.Borrowing, len(m.borrowings))
	for id, b := range m.borrowings {
		cp := *b
		saved[id] = &cp
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.borrowings = saved
	}
}

func (m *MockBorrowingRepository) Create(ctx context.Context, b *borrowing.Borrowing) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, b)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.borrowings {
		if existing.UserID == b.UserID && existing.BookID == b.BookID && existing.IsOpen() {
			return domainErrors.ErrAlreadyBorrowed
		}
	}
	m.borrowings[b.ID] = b
	return nil
}

func (m *MockBorrowingRepository) GetByID(ctx context.Context, id uuid.UUID) (*borrowing.Borrowing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.borrowings[id]
	if !ok {
		return nil, domainErrors.ErrBorrowingNotFound
	}
	return b, nil
}

func (m *MockBorrowingRepository) LockByID(ctx context.Context, id uuid.UUID) (*borrowing.Borrowing, error) {
	return m.GetByID(ctx, id)
}

func (m *MockBorrowingRepository) Update(ctx context.Context, b *borrowing.Borrowing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.borrowings[b.ID]; !ok {
		return domainErrors.ErrBorrowingNotFound
	}
	m.borrowings[b.ID] = b
	return nil
}

func (m *MockBorrowingRepository) List(ctx context.Context, f borrowing.ListFilter) ([]*borrowing.Borrowing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*borrowing.Borrowing
	for _, b := range m.borrowings {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.Active == borrowing.ActiveOnly && !b.IsOpen() {
			continue
		}
		if f.Active == borrowing.ReturnedOnly && b.IsOpen() {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (m *MockBorrowingRepository) HasOpenBorrowing(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.borrowings {
		if b.UserID == userID && b.BookID == bookID && b.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBorrowingRepository) ListDueBy(ctx context.Context, day time.Time) ([]*borrowing.Borrowing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*borrowing.Borrowing
	for _, b := range m.borrowings {
		if b.IsOpen() && !b.ExpectedReturnDate.After(day) {
			result = append(result, b)
		}
	}
	return result, nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payment.Payment
	owners   map[uuid.UUID]uuid.UUID

	CreateFunc         func(ctx context.Context, p *payment.Payment) error
	GetBySessionIDFunc func(ctx context.Context, sessionID string) (*payment.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[uuid.UUID]*payment.Payment)}
}

func (m *MockPaymentRepository) AddPayment(p *payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
}

func (m *MockPaymentRepository) GetPayment(id uuid.UUID) *payment.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[id]
}

// Snapshot returns a function restoring the repository to its current state.
func (m *MockPaymentRepository) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[uuid.UUID]*payment.Payment, len(m.payments))
	for id, p := range m.payments {
		cp := *p
		saved[id] = &cp
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.payments = saved
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return p, nil
}

// LockByID reads the stored payment, standing in for a FOR UPDATE read.
func (m *MockPaymentRepository) LockByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*payment.Payment, error) {
	if m.GetBySessionIDFunc != nil {
		return m.GetBySessionIDFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.SessionID == sessionID {
			return p, nil
		}
	}
	return nil, domainErrors.ErrPaymentNotFound
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; !ok {
		return domainErrors.ErrPaymentNotFound
	}
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) List(ctx context.Context, f payment.ListFilter) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.Payment
	for _, p := range m.payments {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.UserID != nil {
			owner, ok := m.owners[p.BorrowingID]
			if !ok || owner != *f.UserID {
				continue
			}
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *MockPaymentRepository) ListByBorrowing(ctx context.Context, borrowingID uuid.UUID) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.Payment
	for _, p := range m.payments {
		if p.BorrowingID == borrowingID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) ListPending(ctx context.Context) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.Payment
	for _, p := range m.payments {
		if p.Status == payment.StatusPending {
			result = append(result, p)
		}
	}
	return result, nil
}

// HasPendingForUser needs the borrowing side to know the user; tests wire it
// through SetOwner.
func (m *MockPaymentRepository) HasPendingForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.Status != payment.StatusPending {
			continue
		}
		if owner, ok := m.owners[p.BorrowingID]; ok && owner == userID {
			return true, nil
		}
	}
	return false, nil
}

// SetOwner records which user a borrowing belongs to, for HasPendingForUser.
func (m *MockPaymentRepository) SetOwner(borrowingID, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners == nil {
		m.owners = make(map[uuid.UUID]uuid.UUID)
	}
	m.owners[borrowingID] = userID
}

// --- User Repository Mock ---

// MockUserRepository is a mock implementation of user.Repository.
type MockUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*user.User)}
}

func (m *MockUserRepository) AddUser(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domainErrors.ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return domainErrors.ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

// --- Outbox Repository Mock ---

// MockOutboxRepository is a mock implementation of outbox.Repository.
type MockOutboxRepository struct {
	mu      sync.Mutex
	Entries []*outbox.Entry

	InsertFunc func(ctx context.Context, entry *outbox.Entry) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Insert(ctx context.Context, entry *outbox.Entry) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*outbox.Entry
	for _, e := range m.Entries {
		if e.Status == outbox.StatusPending {
			result = append(result, e)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ID == id {
			e.Status = outbox.StatusPublished
			now := time.Now()
			e.PublishedAt = &now
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ID == id {
			e.RetryCount++
			if e.RetryCount >= e.MaxRetries {
				e.Status = outbox.StatusFailed
			}
			return nil
		}
	}
	return nil
}

// EventTypes lists the event types of all recorded entries, in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		types = append(types, e.EventType)
	}
	return types
}

// --- Transaction Manager Mock ---

// MockTransactionManager runs the function directly. When Snapshot is set it
// is called before the function and the returned restore runs on failure, so
// tests can assert that a failed transaction leaves no trace.
type MockTransactionManager struct {
	Calls    int
	Snapshot func() (restore func())
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	var restore func()
	if m.Snapshot != nil {
		restore = m.Snapshot()
	}
	if err := fn(ctx); err != nil {
		if restore != nil {
			restore()
		}
		return err
	}
	return nil
}
