package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/bind"
	"github.com/saydalia/saydalia/pkg/response"
	"github.com/saydalia/saydalia/pkg/storage"
)

// maxIconBytes caps uploaded pharmacy icons at 2 MB.
const maxIconBytes = 2 << 20

type PharmacyController struct {
	service *services.PharmacyService
}

func NewPharmacyController(service *services.PharmacyService) *PharmacyController {
	return &PharmacyController{service: service}
}

// ── Public catalog ──

func (c *PharmacyController) Index(w http.ResponseWriter, r *http.Request) {
	pharmacies, err := c.service.All(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{"pharmacies": pharmacies})
}

func (c *PharmacyController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	pharmacy, err := c.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, pharmacy)
}

func (c *PharmacyController) Medicines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	medicines, err := c.service.Medicines(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{"medicines": medicines})
}

// ── Admin: own pharmacy ──

func (c *PharmacyController) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	var in services.PharmacyInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	pharmacy, err := c.service.Create(r.Context(), admin.ID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, pharmacy)
}

// Mine returns the pharmacy owned by the authenticated admin.
func (c *PharmacyController) Mine(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	pharmacy, err := c.service.Mine(r.Context(), admin.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, pharmacy)
}

func (c *PharmacyController) Update(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	var in services.PharmacyInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	pharmacy, err := c.service.Update(r.Context(), id, admin.ID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, pharmacy)
}

// UploadIcon stores a multipart "icon" file on the configured disk and
// saves its public URL on the pharmacy.
func (c *PharmacyController) UploadIcon(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	if err := r.ParseMultipartForm(maxIconBytes); err != nil {
		badPayload(w)
		return
	}
	file, header, err := r.FormFile("icon")
	if err != nil {
		badPayload(w)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".svg":
	default:
		badPayload(w)
		return
	}

	path := "icons/" + id.Hex() + ext
	if err := storage.PutStream(path, file); err != nil {
		response.FromError(w, err)
		return
	}

	pharmacy, err := c.service.SetIcon(r.Context(), id, admin.ID, storage.URL(path))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, pharmacy)
}

func (c *PharmacyController) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	if err := c.service.Delete(r.Context(), id, admin.ID); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "تم حذف الصيدلية")
}

// ── Admin: catalog management ──

func (c *PharmacyController) AddMedicine(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	var in services.MedicineInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	medicine, err := c.service.AddMedicine(r.Context(), id, admin.ID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, medicine)
}

// ReplaceMedicines overwrites the whole catalog with the submitted list.
func (c *PharmacyController) ReplaceMedicines(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	var in struct {
		Medicines []services.MedicineInput `json:"medicines"`
	}
	if _, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	}

	medicines, err := c.service.ReplaceMedicines(r.Context(), id, admin.ID, in.Medicines)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{"medicines": medicines})
}

func (c *PharmacyController) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}
	medicineID, ok := pathID(r, "medicineId")
	if !ok {
		response.FromError(w, services.ErrMedicineNotFound())
		return
	}

	var in services.MedicineInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	medicine, err := c.service.UpdateMedicine(r.Context(), id, medicineID, admin.ID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, medicine)
}

func (c *PharmacyController) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}
	medicineID, ok := pathID(r, "medicineId")
	if !ok {
		response.FromError(w, services.ErrMedicineNotFound())
		return
	}

	if err := c.service.DeleteMedicine(r.Context(), id, medicineID, admin.ID); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "تم حذف الدواء")
}

// SetStock flips availability without touching the rest of the medicine.
func (c *PharmacyController) SetStock(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}
	medicineID, ok := pathID(r, "medicineId")
	if !ok {
		response.FromError(w, services.ErrMedicineNotFound())
		return
	}

	var in struct {
		InStock bool `json:"inStock"`
		Stock   int  `json:"stock"`
	}
	if _, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	}

	medicine, err := c.service.SetStock(r.Context(), id, medicineID, admin.ID, in.InStock, in.Stock)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, medicine)
}
