package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/cache"
	"github.com/saydalia/saydalia/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgPharmacyExists   = "لديك صيدلية مسجلة بالفعل"
	msgPharmacyNotFound = "لم يتم العثور على الصيدلية"
	msgMedicineNotFound = "لم يتم العثور على الدواء"
	msgNoPharmacy       = "لا توجد صيدلية مرتبطة بحسابك"
)

// Public pharmacy listing cache.
const (
	pharmacyListKey = "pharmacies:all"
	pharmacyListTTL = 5 * time.Minute
)

type PharmacyService struct {
	pharmacies repositories.PharmacyRepository
	users      repositories.UserRepository
}

func NewPharmacyService(pharmacies repositories.PharmacyRepository, users repositories.UserRepository) *PharmacyService {
	return &PharmacyService{pharmacies: pharmacies, users: users}
}

// Create registers a pharmacy for an admin who does not have one yet.
func (s *PharmacyService) Create(ctx context.Context, adminID primitive.ObjectID, in PharmacyInput) (models.Pharmacy, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Pharmacy{}, apperr.NewValidation(msgMissingFields)
	}

	if _, err := s.pharmacies.FindByAdmin(ctx, adminID); err == nil {
		return models.Pharmacy{}, apperr.NewConflict(msgPharmacyExists)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.Pharmacy{}, apperr.NewInternal(err)
	}

	p := models.Pharmacy{
		Name:         in.Name,
		Address:      in.Address,
		Phone:        in.Phone,
		Rating:       models.DefaultRating,
		Specialties:  in.Specialties,
		WorkingHours: in.WorkingHours,
		Icon:         in.Icon,
		Admin:        adminID,
		Medicines:    []models.Medicine{},
	}
	if err := s.pharmacies.Create(ctx, &p); err != nil {
		// The unique index on admin closes the precheck race.
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Pharmacy{}, apperr.NewConflict(msgPharmacyExists)
		}
		return models.Pharmacy{}, apperr.NewInternal(err)
	}

	if err := s.users.SetPharmacy(ctx, adminID, &p.ID); err != nil {
		logger.Error("pharmacy create: linking to admin failed", "admin", adminID.Hex(), "error", err)
	}
	s.invalidateListing()
	return p, nil
}

// All returns every pharmacy, newest first. The listing is public and
// served through the Redis cache when available.
func (s *PharmacyService) All(ctx context.Context) ([]models.Pharmacy, error) {
	var cached []models.Pharmacy
	if cache.Get(pharmacyListKey, &cached) {
		return cached, nil
	}

	out, err := s.pharmacies.All(ctx)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	if err := cache.Set(pharmacyListKey, out, pharmacyListTTL); err != nil {
		logger.Warn("pharmacy listing: cache set failed", "error", err)
	}
	return out, nil
}

// Get returns one pharmacy by id.
func (s *PharmacyService) Get(ctx context.Context, id primitive.ObjectID) (models.Pharmacy, error) {
	p, err := s.pharmacies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Pharmacy{}, apperr.NewNotFound(msgPharmacyNotFound)
		}
		return models.Pharmacy{}, apperr.NewInternal(err)
	}
	return p, nil
}

// Mine returns the pharmacy owned by the calling admin.
func (s *PharmacyService) Mine(ctx context.Context, adminID primitive.ObjectID) (models.Pharmacy, error) {
	p, err := s.pharmacies.FindByAdmin(ctx, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Pharmacy{}, apperr.NewNotFound(msgNoPharmacy)
		}
		return models.Pharmacy{}, apperr.NewInternal(err)
	}
	return p, nil
}

// Update edits the pharmacy profile. A non-owner sees 404, never 403:
// the ownership check lives in the store filter.
func (s *PharmacyService) Update(ctx context.Context, id, adminID primitive.ObjectID, in PharmacyInput) (models.Pharmacy, error) {
	p, err := s.ownedPharmacy(ctx, id, adminID)
	if err != nil {
		return models.Pharmacy{}, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	if in.Address != "" {
		p.Address = in.Address
	}
	if in.Phone != "" {
		p.Phone = in.Phone
	}
	if in.Specialties != nil {
		p.Specialties = in.Specialties
	}
	if in.WorkingHours != "" {
		p.WorkingHours = in.WorkingHours
	}
	if in.Icon != "" {
		p.Icon = in.Icon
	}

	if err := s.replace(ctx, &p); err != nil {
		return models.Pharmacy{}, err
	}
	return p, nil
}

// SetIcon stores the uploaded icon path on the pharmacy profile.
func (s *PharmacyService) SetIcon(ctx context.Context, id, adminID primitive.ObjectID, icon string) (models.Pharmacy, error) {
	p, err := s.ownedPharmacy(ctx, id, adminID)
	if err != nil {
		return models.Pharmacy{}, err
	}
	p.Icon = icon
	if err := s.replace(ctx, &p); err != nil {
		return models.Pharmacy{}, err
	}
	return p, nil
}

// Delete removes the pharmacy and unlinks it from the admin account.
func (s *PharmacyService) Delete(ctx context.Context, id, adminID primitive.ObjectID) error {
	if err := s.pharmacies.Delete(ctx, id, adminID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NewNotFound(msgPharmacyNotFound)
		}
		return apperr.NewInternal(err)
	}
	if err := s.users.SetPharmacy(ctx, adminID, nil); err != nil {
		logger.Error("pharmacy delete: unlinking admin failed", "admin", adminID.Hex(), "error", err)
	}
	s.invalidateListing()
	return nil
}

// ── Medicine catalog ─────────────────────────────────────────────────────────

// MedicineInput carries the catalog payload for add and update.
type MedicineInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	InStock     *bool   `json:"inStock"`
	Stock       *int    `json:"stock"`
	Category    string  `json:"category"`
}

// Medicines returns the catalog of one pharmacy.
func (s *PharmacyService) Medicines(ctx context.Context, pharmacyID primitive.ObjectID) ([]models.Medicine, error) {
	p, err := s.Get(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if p.Medicines == nil {
		return []models.Medicine{}, nil
	}
	return p.Medicines, nil
}

// AddMedicine appends a medicine to the owner's catalog.
func (s *PharmacyService) AddMedicine(ctx context.Context, pharmacyID, adminID primitive.ObjectID, in MedicineInput) (models.Medicine, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Price < 0 {
		return models.Medicine{}, apperr.NewValidation(msgMissingFields)
	}

	p, err := s.ownedPharmacy(ctx, pharmacyID, adminID)
	if err != nil {
		return models.Medicine{}, err
	}

	m := models.Medicine{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		InStock:     true,
		Category:    in.Category,
	}
	if in.InStock != nil {
		m.InStock = *in.InStock
	}
	if in.Stock != nil {
		m.Stock = *in.Stock
	}

	p.Medicines = append(p.Medicines, m)
	if err := s.replace(ctx, &p); err != nil {
		return models.Medicine{}, err
	}
	return m, nil
}

// ReplaceMedicines swaps the owner's entire catalog for the given list.
// Every entry gets a fresh id; an empty list clears the catalog.
func (s *PharmacyService) ReplaceMedicines(ctx context.Context, pharmacyID, adminID primitive.ObjectID, in []MedicineInput) ([]models.Medicine, error) {
	p, err := s.ownedPharmacy(ctx, pharmacyID, adminID)
	if err != nil {
		return nil, err
	}

	medicines := make([]models.Medicine, 0, len(in))
	for _, item := range in {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" || item.Price < 0 {
			return nil, apperr.NewValidation(msgMissingFields)
		}

		m := models.Medicine{
			ID:          primitive.NewObjectID(),
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			InStock:     true,
			Category:    item.Category,
		}
		if item.InStock != nil {
			m.InStock = *item.InStock
		}
		if item.Stock != nil {
			m.Stock = *item.Stock
		}
		medicines = append(medicines, m)
	}

	p.Medicines = medicines
	if err := s.replace(ctx, &p); err != nil {
		return nil, err
	}
	return medicines, nil
}

// UpdateMedicine edits a medicine in the owner's catalog.
func (s *PharmacyService) UpdateMedicine(ctx context.Context, pharmacyID, medicineID, adminID primitive.ObjectID, in MedicineInput) (models.Medicine, error) {
	p, err := s.ownedPharmacyWithMedicine(ctx, pharmacyID, medicineID, adminID)
	if err != nil {
		return models.Medicine{}, err
	}

	idx := -1
	for i := range p.Medicines {
		if p.Medicines[i].ID == medicineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Medicine{}, apperr.NewNotFound(msgMedicineNotFound)
	}

	m := &p.Medicines[idx]
	if name := strings.TrimSpace(in.Name); name != "" {
		m.Name = name
	}
	if in.Description != "" {
		m.Description = in.Description
	}
	if in.Price > 0 {
		m.Price = in.Price
	}
	if in.InStock != nil {
		m.InStock = *in.InStock
	}
	if in.Stock != nil {
		m.Stock = *in.Stock
	}
	if in.Category != "" {
		m.Category = in.Category
	}

	if err := s.replace(ctx, &p); err != nil {
		return models.Medicine{}, err
	}
	return *m, nil
}

// DeleteMedicine removes a medicine from the owner's catalog.
func (s *PharmacyService) DeleteMedicine(ctx context.Context, pharmacyID, medicineID, adminID primitive.ObjectID) error {
	p, err := s.ownedPharmacyWithMedicine(ctx, pharmacyID, medicineID, adminID)
	if err != nil {
		return err
	}

	kept := p.Medicines[:0]
	for _, m := range p.Medicines {
		if m.ID != medicineID {
			kept = append(kept, m)
		}
	}

	p.Medicines = kept
	return s.replace(ctx, &p)
}

// SetStock updates availability for one medicine.
func (s *PharmacyService) SetStock(ctx context.Context, pharmacyID, medicineID, adminID primitive.ObjectID, inStock bool, stock int) (models.Medicine, error) {
	return s.UpdateMedicine(ctx, pharmacyID, medicineID, adminID, MedicineInput{InStock: &inStock, Stock: &stock})
}

func (s *PharmacyService) ownedPharmacy(ctx context.Context, id, adminID primitive.ObjectID) (models.Pharmacy, error) {
	p, err := s.pharmacies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Pharmacy{}, apperr.NewNotFound(msgPharmacyNotFound)
		}
		return models.Pharmacy{}, apperr.NewInternal(err)
	}
	// Non-owners get the same 404 as a missing pharmacy.
	if !p.OwnedBy(adminID) {
		return models.Pharmacy{}, apperr.NewNotFound(msgPharmacyNotFound)
	}
	return p, nil
}

// ownedPharmacyWithMedicine resolves the pharmacy holding the medicine
// through the catalog index, then checks it is the addressed pharmacy and
// that the caller owns it. A medicine living in a different pharmacy reads
// as a missing medicine; a non-owner sees the usual masked 404.
func (s *PharmacyService) ownedPharmacyWithMedicine(ctx context.Context, pharmacyID, medicineID, adminID primitive.ObjectID) (models.Pharmacy, error) {
	p, err := s.pharmacies.FindByMedicine(ctx, medicineID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Pharmacy{}, apperr.NewNotFound(msgMedicineNotFound)
		}
		return models.Pharmacy{}, apperr.NewInternal(err)
	}
	if p.ID != pharmacyID {
		return models.Pharmacy{}, apperr.NewNotFound(msgMedicineNotFound)
	}
	if !p.OwnedBy(adminID) {
		return models.Pharmacy{}, apperr.NewNotFound(msgPharmacyNotFound)
	}
	return p, nil
}

func (s *PharmacyService) replace(ctx context.Context, p *models.Pharmacy) error {
	if err := s.pharmacies.Replace(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NewNotFound(msgPharmacyNotFound)
		}
		return apperr.NewInternal(err)
	}
	s.invalidateListing()
	return nil
}

func (s *PharmacyService) invalidateListing() {
	if err := cache.Forget(pharmacyListKey); err != nil {
		logger.Warn("pharmacy listing: cache invalidation failed", "error", err)
	}
}
