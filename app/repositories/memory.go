package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations backing the service tests. They enforce the
// same unique constraints the Mongo indexes do: one account per email
// (case-insensitive) and one pharmacy per admin.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[primitive.ObjectID]models.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.TrimSpace(strings.ToLower(email))
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) SetPharmacy(_ context.Context, userID primitive.ObjectID, pharmacyID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Pharmacy = pharmacyID
	u.UpdatedAt = time.Now()
	r.users[userID] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type MemoryPharmacyRepository struct {
	mu         sync.RWMutex
	pharmacies map[primitive.ObjectID]models.Pharmacy
}

func NewMemoryPharmacyRepository() *MemoryPharmacyRepository {
	return &MemoryPharmacyRepository{pharmacies: map[primitive.ObjectID]models.Pharmacy{}}
}

func (r *MemoryPharmacyRepository) Create(_ context.Context, p *models.Pharmacy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.pharmacies {
		if existing.Admin == p.Admin {
			return ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.pharmacies[p.ID] = clonePharmacy(*p)
	return nil
}

func (r *MemoryPharmacyRepository) FindByID(_ context.Context, id primitive.ObjectID) (models.Pharmacy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pharmacies[id]
	if !ok {
		return models.Pharmacy{}, ErrNotFound
	}
	return clonePharmacy(p), nil
}

func (r *MemoryPharmacyRepository) FindByAdmin(_ context.Context, adminID primitive.ObjectID) (models.Pharmacy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pharmacies {
		if p.Admin == adminID {
			return clonePharmacy(p), nil
		}
	}
	return models.Pharmacy{}, ErrNotFound
}

func (r *MemoryPharmacyRepository) FindByMedicine(_ context.Context, medicineID primitive.ObjectID) (models.Pharmacy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pharmacies {
		for _, m := range p.Medicines {
			if m.ID == medicineID {
				return clonePharmacy(p), nil
			}
		}
	}
	return models.Pharmacy{}, ErrNotFound
}

func (r *MemoryPharmacyRepository) All(_ context.Context) ([]models.Pharmacy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Pharmacy, 0, len(r.pharmacies))
	for _, p := range r.pharmacies {
		out = append(out, clonePharmacy(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPharmacyRepository) Replace(_ context.Context, p *models.Pharmacy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.pharmacies[p.ID]
	if !ok || existing.Admin != p.Admin {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.pharmacies[p.ID] = clonePharmacy(*p)
	return nil
}

func (r *MemoryPharmacyRepository) Delete(_ context.Context, id, adminID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.pharmacies[id]
	if !ok || existing.Admin != adminID {
		return ErrNotFound
	}
	delete(r.pharmacies, id)
	return nil
}

func clonePharmacy(p models.Pharmacy) models.Pharmacy {
	p.Medicines = append([]models.Medicine(nil), p.Medicines...)
	p.Specialties = append([]string(nil), p.Specialties...)
	return p
}

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: map[primitive.ObjectID]models.Order{}}
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.orders[o.ID] = *o
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return o, nil
}

func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.User == userID }), nil
}

func (r *MemoryOrderRepository) ListByPharmacy(_ context.Context, pharmacyID primitive.ObjectID) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.Pharmacy == pharmacyID }), nil
}

func (r *MemoryOrderRepository) list(match func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Order{}
	for _, o := range r.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryOrderRepository) CountByStatus(_ context.Context, pharmacyID primitive.ObjectID) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int64{}
	for _, o := range r.orders {
		if o.Pharmacy == pharmacyID {
			counts[o.Status]++
		}
	}
	return counts, nil
}

type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]models.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: map[primitive.ObjectID]models.Notification{}}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now()
	r.notifications[n.ID] = *n
	return nil
}

func (r *MemoryNotificationRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Notification{}
	for _, n := range r.notifications {
		if n.User == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id, userID primitive.ObjectID) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.User != userID {
		return models.Notification{}, ErrNotFound
	}
	n.Read = true
	r.notifications[id] = n
	return n, nil
}

func (r *MemoryNotificationRepository) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, n := range r.notifications {
		if n.User == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

var (
	_ UserRepository         = (*MemoryUserRepository)(nil)
	_ PharmacyRepository     = (*MemoryPharmacyRepository)(nil)
	_ OrderRepository        = (*MemoryOrderRepository)(nil)
	_ NotificationRepository = (*MemoryNotificationRepository)(nil)

	_ UserRepository         = (*MongoUserRepository)(nil)
	_ PharmacyRepository     = (*MongoPharmacyRepository)(nil)
	_ OrderRepository        = (*MongoOrderRepository)(nil)
	_ NotificationRepository = (*MongoNotificationRepository)(nil)
)
