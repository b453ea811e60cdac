package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// MemoryStorage keeps users and transactions in process memory. It honours
// the same contract as Storage and is used when no database is configured.
type MemoryStorage struct {
	mu           sync.RWMutex
	users        []models.User
	transactions []models.Transaction
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Close() {}

func (m *MemoryStorage) CreateUser(_ context.Context, input models.CreateUser) (*models.User, error) {
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(input.Email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}

	user := models.User{
		ID:        len(m.users) + 1,
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
		Email:     email,
		Password:  hash,
	}
	m.users = append(m.users, user)
	return &user, nil
}

func (m *MemoryStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) GetUserByID(_ context.Context, id int) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > len(m.users) {
		return nil, nil
	}
	u := m.users[id-1]
	return &u, nil
}

func (m *MemoryStorage) UpdateProfile(_ context.Context, id int, input models.UpdateProfile) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > len(m.users) {
		return nil, ErrNotFound
	}
	m.users[id-1].Firstname = input.Firstname
	m.users[id-1].Lastname = input.Lastname
	u := m.users[id-1]
	return &u, nil
}

func (m *MemoryStorage) CreateTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = len(m.transactions) + 1
	m.transactions = append(m.transactions, *t)
	return nil
}

func (m *MemoryStorage) ListTransactions(_ context.Context, userID int) ([]models.Transaction, error) {
	return m.filter(userID, func(time.Time) bool { return true }), nil
}

func (m *MemoryStorage) FetchRange(_ context.Context, userID int, start, end time.Time) ([]models.Transaction, error) {
	return m.filter(userID, func(at time.Time) bool {
		return !at.Before(start) && !at.After(end)
	}), nil
}

func (m *MemoryStorage) SumFootprintRange(_ context.Context, userID int, start, end time.Time) (float64, error) {
	var sum float64
	for _, t := range m.filter(userID, func(at time.Time) bool {
		return !at.Before(start) && at.Before(end)
	}) {
		sum += t.Footprint()
	}
	return sum, nil
}

// filter returns copies of the user's matching transactions, newest first.
func (m *MemoryStorage) filter(userID int, keep func(time.Time) bool) []models.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Transaction{}
	for _, t := range m.transactions {
		if t.UserID == userID && keep(t.CreatedAt) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
