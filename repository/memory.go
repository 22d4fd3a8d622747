package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meinhoongagan/clinic-app/models"
)

// MemoryStore keeps every collection in process memory. It backs `serve --memory` and tests.
// WithinTx snapshots the data and restores it when fn fails.
type MemoryStore struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  *memoryData
	repos *Repositories

	Now func() time.Time
}

type memoryData struct {
	nextID        uint
	users         map[uint]models.User
	patients      map[uint]models.Patient
	doctors       map[uint]models.Doctor
	receptionists map[uint]models.Receptionist
	admins        map[uint]models.Admin
	specialties   map[uint]models.Specialty
	fees          map[uint]models.ExaminationFee
	suppliers     map[uint]models.Supplier
	medicines     map[uint]models.Medicine
	appointments  map[uint]models.Appointment
	records       map[uint]models.MedicalRecord
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:         map[uint]models.User{},
		patients:      map[uint]models.Patient{},
		doctors:       map[uint]models.Doctor{},
		receptionists: map[uint]models.Receptionist{},
		admins:        map[uint]models.Admin{},
		specialties:   map[uint]models.Specialty{},
		fees:          map[uint]models.ExaminationFee{},
		suppliers:     map[uint]models.Supplier{},
		medicines:     map[uint]models.Medicine{},
		appointments:  map[uint]models.Appointment{},
		records:       map[uint]models.MedicalRecord{},
	}
}

func copyMap[T any](src map[uint]T) map[uint]T {
	dst := make(map[uint]T, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		nextID:        d.nextID,
		users:         copyMap(d.users),
		patients:      copyMap(d.patients),
		doctors:       copyMap(d.doctors),
		receptionists: copyMap(d.receptionists),
		admins:        copyMap(d.admins),
		specialties:   copyMap(d.specialties),
		fees:          copyMap(d.fees),
		suppliers:     copyMap(d.suppliers),
		medicines:     copyMap(d.medicines),
		appointments:  copyMap(d.appointments),
		records:       make(map[uint]models.MedicalRecord, len(d.records)),
	}
	for k, v := range d.records {
		v.Medications = append(models.Prescription(nil), v.Medications...)
		c.records[k] = v
	}
	return c
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{data: newMemoryData(), Now: time.Now}
	s.repos = &Repositories{
		Users:        &memUsers{s},
		Patients:     &memPatients{s},
		Doctors:      &memDoctors{s},
		Staff:        &memStaff{s},
		Specialties:  &memSpecialties{s},
		Fees:         &memFees{s},
		Suppliers:    &memSuppliers{s},
		Medicines:    &memMedicines{s},
		Appointments: &memAppointments{s},
		Records:      &memRecords{s},
	}
	return s
}

func (s *MemoryStore) Repos() *Repositories {
	return s.repos
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(r *Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.repos); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock must be held by callers of the helpers below.
func (s *MemoryStore) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) id() uint {
	s.data.nextID++
	return s.data.nextID
}

func (s *MemoryStore) stamp(created *time.Time, updated *time.Time) {
	now := s.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (s *MemoryStore) userByID(id uint) models.User {
	return s.data.users[id]
}

func (s *MemoryStore) hydrateDoctor(d models.Doctor) models.Doctor {
	d.User = s.userByID(d.UserID)
	d.Specialty = nil
	if d.SpecialtyID != nil {
		if sp, ok := s.data.specialties[*d.SpecialtyID]; ok {
			d.Specialty = &sp
		}
	}
	return d
}

func (s *MemoryStore) hydratePatient(p models.Patient) models.Patient {
	p.User = s.userByID(p.UserID)
	return p
}

func (s *MemoryStore) hydrateAppointment(a models.Appointment) models.Appointment {
	a.Patient, a.Doctor = nil, nil
	if p, ok := s.data.patients[a.PatientID]; ok {
		p = s.hydratePatient(p)
		a.Patient = &p
	}
	if d, ok := s.data.doctors[a.DoctorID]; ok {
		d = s.hydrateDoctor(d)
		a.Doctor = &d
	}
	return a
}

func (s *MemoryStore) hydrateRecord(r models.MedicalRecord) models.MedicalRecord {
	r.Patient, r.Doctor = nil, nil
	r.Medications = append(models.Prescription(nil), r.Medications...)
	if p, ok := s.data.patients[r.PatientID]; ok {
		p = s.hydratePatient(p)
		r.Patient = &p
	}
	if d, ok := s.data.doctors[r.DoctorID]; ok {
		d = s.hydrateDoctor(d)
		r.Doctor = &d
	}
	return r
}

func sortedKeys[T any](m map[uint]T) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// users

type memUsers struct{ s *MemoryStore }

func (r *memUsers) insert(u *models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	for _, existing := range r.s.data.users {
		if existing.Username == u.Username && existing.ID != u.ID {
			return ErrDuplicate
		}
	}
	if u.ID == 0 {
		u.ID = r.s.id()
	}
	r.s.stamp(&u.CreatedAt, &u.UpdatedAt)
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	defer r.s.lock()()
	return r.insert(u)
}

func (r *memUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) Save(ctx context.Context, u *models.User) error {
	defer r.s.lock()()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return ErrNotFound
	}
	return r.insert(u)
}

// patients

type memPatients struct{ s *MemoryStore }

func (r *memPatients) Create(ctx context.Context, p *models.Patient) error {
	defer r.s.lock()()
	users := &memUsers{r.s}
	if p.UserID == 0 {
		if err := users.insert(&p.User); err != nil {
			return err
		}
		p.UserID = p.User.ID
	}
	for _, existing := range r.s.data.patients {
		if existing.UserID == p.UserID {
			return ErrDuplicate
		}
	}
	p.ID = r.s.id()
	r.s.stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.data.patients[p.ID] = *p
	return nil
}

func (r *memPatients) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	defer r.s.lock()()
	p, ok := r.s.data.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = r.s.hydratePatient(p)
	return &p, nil
}

func (r *memPatients) GetByUserID(ctx context.Context, userID uint) (*models.Patient, error) {
	defer r.s.lock()()
	for _, p := range r.s.data.patients {
		if p.UserID == userID {
			p = r.s.hydratePatient(p)
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPatients) List(ctx context.Context) ([]models.Patient, error) {
	defer r.s.lock()()
	out := make([]models.Patient, 0, len(r.s.data.patients))
	for _, id := range sortedKeys(r.s.data.patients) {
		out = append(out, r.s.hydratePatient(r.s.data.patients[id]))
	}
	return out, nil
}

func (r *memPatients) Save(ctx context.Context, p *models.Patient) error {
	defer r.s.lock()()
	if _, ok := r.s.data.patients[p.ID]; !ok {
		return ErrNotFound
	}
	if p.User.ID != 0 {
		if err := (&memUsers{r.s}).insert(&p.User); err != nil {
			return err
		}
	}
	r.s.stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.data.patients[p.ID] = *p
	return nil
}

// doctors

type memDoctors struct{ s *MemoryStore }

func (r *memDoctors) Create(ctx context.Context, d *models.Doctor) error {
	defer r.s.lock()()
	if d.UserID == 0 {
		if err := (&memUsers{r.s}).insert(&d.User); err != nil {
			return err
		}
		d.UserID = d.User.ID
	}
	d.ID = r.s.id()
	r.s.stamp(&d.CreatedAt, &d.UpdatedAt)
	r.s.data.doctors[d.ID] = *d
	return nil
}

func (r *memDoctors) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	defer r.s.lock()()
	d, ok := r.s.data.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	d = r.s.hydrateDoctor(d)
	return &d, nil
}

func (r *memDoctors) GetByUserID(ctx context.Context, userID uint) (*models.Doctor, error) {
	defer r.s.lock()()
	for _, d := range r.s.data.doctors {
		if d.UserID == userID {
			d = r.s.hydrateDoctor(d)
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memDoctors) List(ctx context.Context, bookableOnly bool) ([]models.Doctor, error) {
	defer r.s.lock()()
	var out []models.Doctor
	for _, id := range sortedKeys(r.s.data.doctors) {
		d := r.s.hydrateDoctor(r.s.data.doctors[id])
		if bookableOnly && !d.Bookable() {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memDoctors) Save(ctx context.Context, d *models.Doctor) error {
	defer r.s.lock()()
	if _, ok := r.s.data.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	if err := (&memUsers{r.s}).insert(&d.User); err != nil {
		return err
	}
	r.s.stamp(&d.CreatedAt, &d.UpdatedAt)
	r.s.data.doctors[d.ID] = *d
	return nil
}

// staff

type memStaff struct{ s *MemoryStore }

func (r *memStaff) CreateReceptionist(ctx context.Context, rec *models.Receptionist) error {
	defer r.s.lock()()
	if rec.UserID == 0 {
		if err := (&memUsers{r.s}).insert(&rec.User); err != nil {
			return err
		}
		rec.UserID = rec.User.ID
	}
	rec.ID = r.s.id()
	r.s.stamp(&rec.CreatedAt, &rec.UpdatedAt)
	r.s.data.receptionists[rec.ID] = *rec
	return nil
}

func (r *memStaff) GetReceptionist(ctx context.Context, id uint) (*models.Receptionist, error) {
	defer r.s.lock()()
	rec, ok := r.s.data.receptionists[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.User = r.s.userByID(rec.UserID)
	return &rec, nil
}

func (r *memStaff) CreateAdmin(ctx context.Context, a *models.Admin) error {
	defer r.s.lock()()
	if a.UserID == 0 {
		if err := (&memUsers{r.s}).insert(&a.User); err != nil {
			return err
		}
		a.UserID = a.User.ID
	}
	a.ID = r.s.id()
	r.s.stamp(&a.CreatedAt, &a.UpdatedAt)
	r.s.data.admins[a.ID] = *a
	return nil
}

// specialties

type memSpecialties struct{ s *MemoryStore }

func (r *memSpecialties) put(sp *models.Specialty) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	for _, existing := range r.s.data.specialties {
		if existing.Code == sp.Code && existing.ID != sp.ID {
			return ErrDuplicate
		}
	}
	if sp.ID == 0 {
		sp.ID = r.s.id()
	}
	r.s.stamp(&sp.CreatedAt, &sp.UpdatedAt)
	r.s.data.specialties[sp.ID] = *sp
	return nil
}

func (r *memSpecialties) Create(ctx context.Context, sp *models.Specialty) error {
	defer r.s.lock()()
	sp.ID = 0
	return r.put(sp)
}

func (r *memSpecialties) GetByID(ctx context.Context, id uint) (*models.Specialty, error) {
	defer r.s.lock()()
	sp, ok := r.s.data.specialties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sp, nil
}

func (r *memSpecialties) List(ctx context.Context, activeOnly bool) ([]models.Specialty, error) {
	defer r.s.lock()()
	var out []models.Specialty
	for _, id := range sortedKeys(r.s.data.specialties) {
		sp := r.s.data.specialties[id]
		if activeOnly && !sp.IsActive {
			continue
		}
		out = append(out, sp)
	}
	return out, nil
}

func (r *memSpecialties) Save(ctx context.Context, sp *models.Specialty) error {
	defer r.s.lock()()
	if _, ok := r.s.data.specialties[sp.ID]; !ok {
		return ErrNotFound
	}
	return r.put(sp)
}

// examination fees

type memFees struct{ s *MemoryStore }

func (r *memFees) put(f *models.ExaminationFee) error {
	if err := f.Validate(); err != nil {
		return err
	}
	for _, existing := range r.s.data.fees {
		if existing.ExaminationType == f.ExaminationType && existing.ID != f.ID {
			return ErrDuplicate
		}
	}
	if f.ID == 0 {
		f.ID = r.s.id()
	}
	r.s.stamp(&f.CreatedAt, &f.UpdatedAt)
	stored := *f
	stored.Specialty = nil
	r.s.data.fees[f.ID] = stored
	return nil
}

func (r *memFees) Create(ctx context.Context, f *models.ExaminationFee) error {
	defer r.s.lock()()
	f.ID = 0
	return r.put(f)
}

func (r *memFees) GetByID(ctx context.Context, id uint) (*models.ExaminationFee, error) {
	defer r.s.lock()()
	f, ok := r.s.data.fees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *memFees) List(ctx context.Context, activeOnly bool) ([]models.ExaminationFee, error) {
	defer r.s.lock()()
	var out []models.ExaminationFee
	for _, id := range sortedKeys(r.s.data.fees) {
		f := r.s.data.fees[id]
		if activeOnly && !f.IsActive {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *memFees) Save(ctx context.Context, f *models.ExaminationFee) error {
	defer r.s.lock()()
	if _, ok := r.s.data.fees[f.ID]; !ok {
		return ErrNotFound
	}
	return r.put(f)
}

// suppliers

type memSuppliers struct{ s *MemoryStore }

func (r *memSuppliers) put(sp *models.Supplier) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	for _, existing := range r.s.data.suppliers {
		if existing.Name == sp.Name && existing.ID != sp.ID {
			return ErrDuplicate
		}
	}
	if sp.ID == 0 {
		sp.ID = r.s.id()
	}
	r.s.stamp(&sp.CreatedAt, &sp.UpdatedAt)
	r.s.data.suppliers[sp.ID] = *sp
	return nil
}

func (r *memSuppliers) Create(ctx context.Context, sp *models.Supplier) error {
	defer r.s.lock()()
	sp.ID = 0
	return r.put(sp)
}

func (r *memSuppliers) GetByID(ctx context.Context, id uint) (*models.Supplier, error) {
	defer r.s.lock()()
	sp, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sp, nil
}

func (r *memSuppliers) List(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	defer r.s.lock()()
	var out []models.Supplier
	for _, id := range sortedKeys(r.s.data.suppliers) {
		sp := r.s.data.suppliers[id]
		if activeOnly && !sp.IsActive {
			continue
		}
		out = append(out, sp)
	}
	return out, nil
}

func (r *memSuppliers) Save(ctx context.Context, sp *models.Supplier) error {
	defer r.s.lock()()
	if _, ok := r.s.data.suppliers[sp.ID]; !ok {
		return ErrNotFound
	}
	return r.put(sp)
}

// medicines

type memMedicines struct{ s *MemoryStore }

func (r *memMedicines) put(m *models.Medicine) error {
	if err := m.Validate(); err != nil {
		return err
	}
	for _, existing := range r.s.data.medicines {
		if existing.DrugName == m.DrugName && existing.ID != m.ID {
			return ErrDuplicate
		}
	}
	if m.ID == 0 {
		m.ID = r.s.id()
	}
	r.s.stamp(&m.CreatedAt, &m.UpdatedAt)
	stored := *m
	stored.Supplier = nil
	r.s.data.medicines[m.ID] = stored
	return nil
}

func (r *memMedicines) withSupplier(m models.Medicine) models.Medicine {
	if m.SupplierID != nil {
		if sp, ok := r.s.data.suppliers[*m.SupplierID]; ok {
			m.Supplier = &sp
		}
	}
	return m
}

func (r *memMedicines) Create(ctx context.Context, m *models.Medicine) error {
	defer r.s.lock()()
	m.ID = 0
	return r.put(m)
}

func (r *memMedicines) GetByID(ctx context.Context, id uint) (*models.Medicine, error) {
	defer r.s.lock()()
	m, ok := r.s.data.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	m = r.withSupplier(m)
	return &m, nil
}

func (r *memMedicines) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Medicine, error) {
	defer r.s.lock()()
	out := make(map[uint]*models.Medicine, len(ids))
	for _, id := range ids {
		if m, ok := r.s.data.medicines[id]; ok {
			out[id] = &m
		}
	}
	return out, nil
}

func (r *memMedicines) List(ctx context.Context, filter MedicineFilter) ([]models.Medicine, error) {
	defer r.s.lock()()
	var out []models.Medicine
	for _, id := range sortedKeys(r.s.data.medicines) {
		m := r.s.data.medicines[id]
		if filter.ActiveOnly && !m.IsActive {
			continue
		}
		if filter.MaxStock != nil && m.StockQuantity > *filter.MaxStock {
			continue
		}
		out = append(out, r.withSupplier(m))
	}
	return out, nil
}

func (r *memMedicines) Save(ctx context.Context, m *models.Medicine) error {
	defer r.s.lock()()
	if _, ok := r.s.data.medicines[m.ID]; !ok {
		return ErrNotFound
	}
	return r.put(m)
}

func (r *memMedicines) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	defer r.s.lock()()
	m, ok := r.s.data.medicines[id]
	if !ok || m.StockQuantity < qty {
		return false, nil
	}
	m.StockQuantity -= qty
	r.s.data.medicines[id] = m
	return true, nil
}

func (r *memMedicines) DeactivateBySupplier(ctx context.Context, supplierID uint) (int64, error) {
	defer r.s.lock()()
	var n int64
	for id, m := range r.s.data.medicines {
		if m.IsActive && m.SupplierID != nil && *m.SupplierID == supplierID {
			m.IsActive = false
			r.s.data.medicines[id] = m
			n++
		}
	}
	return n, nil
}

func (r *memMedicines) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	defer r.s.lock()()
	var n int64
	for id, m := range r.s.data.medicines {
		if m.IsActive && m.Expired(now) {
			m.IsActive = false
			r.s.data.medicines[id] = m
			n++
		}
	}
	return n, nil
}

// appointments

type memAppointments struct{ s *MemoryStore }

func (r *memAppointments) conflict(a *models.Appointment) bool {
	if a.Status == models.StatusCancelled {
		return false
	}
	for _, existing := range r.s.data.appointments {
		if existing.ID != a.ID && existing.DoctorID == a.DoctorID &&
			existing.AppointmentTime.Equal(a.AppointmentTime) && existing.Status != models.StatusCancelled {
			return true
		}
	}
	return false
}

func (r *memAppointments) put(a *models.Appointment) error {
	if r.conflict(a) {
		return ErrDuplicate
	}
	if a.ID == 0 {
		a.ID = r.s.id()
	}
	r.s.stamp(&a.CreatedAt, &a.UpdatedAt)
	stored := *a
	stored.Patient, stored.Doctor = nil, nil
	r.s.data.appointments[a.ID] = stored
	return nil
}

func (r *memAppointments) Create(ctx context.Context, a *models.Appointment) error {
	defer r.s.lock()()
	if a.Status == "" {
		a.Status = models.StatusBooked
	}
	a.ID = 0
	return r.put(a)
}

func (r *memAppointments) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	defer r.s.lock()()
	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = r.s.hydrateAppointment(a)
	return &a, nil
}

func (r *memAppointments) Save(ctx context.Context, a *models.Appointment) error {
	defer r.s.lock()()
	if _, ok := r.s.data.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	return r.put(a)
}

func (r *memAppointments) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	defer r.s.lock()()
	var out []models.Appointment
	for _, a := range r.s.data.appointments {
		switch {
		case f.From != nil && a.AppointmentTime.Before(*f.From):
			continue
		case f.To != nil && a.AppointmentTime.After(*f.To):
			continue
		case f.DoctorID != 0 && a.DoctorID != f.DoctorID:
			continue
		case f.PatientID != 0 && a.PatientID != f.PatientID:
			continue
		case f.Status != "" && a.Status != f.Status:
			continue
		}
		out = append(out, r.s.hydrateAppointment(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentTime.Equal(out[j].AppointmentTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppointmentTime.Before(out[j].AppointmentTime)
	})
	return out, nil
}

func (r *memAppointments) HasActiveAt(ctx context.Context, doctorID uint, at time.Time, excludeID uint) (bool, error) {
	defer r.s.lock()()
	probe := models.Appointment{DoctorID: doctorID, AppointmentTime: at, Status: models.StatusBooked}
	probe.ID = excludeID
	return r.conflict(&probe), nil
}

func (r *memAppointments) ListOpenBefore(ctx context.Context, t time.Time) ([]models.Appointment, error) {
	defer r.s.lock()()
	var out []models.Appointment
	for _, id := range sortedKeys(r.s.data.appointments) {
		a := r.s.data.appointments[id]
		if !a.Status.Terminal() && !a.AppointmentTime.After(t) {
			out = append(out, a)
		}
	}
	return out, nil
}

// medical records

type memRecords struct{ s *MemoryStore }

func (r *memRecords) put(rec *models.MedicalRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	for _, existing := range r.s.data.records {
		if existing.AppointmentID == rec.AppointmentID && existing.ID != rec.ID {
			return ErrDuplicate
		}
	}
	if rec.ID == 0 {
		rec.ID = r.s.id()
	}
	r.s.stamp(&rec.CreatedAt, &rec.UpdatedAt)
	stored := *rec
	stored.Patient, stored.Doctor = nil, nil
	stored.Medications = append(models.Prescription(nil), rec.Medications...)
	r.s.data.records[rec.ID] = stored
	return nil
}

func (r *memRecords) Create(ctx context.Context, rec *models.MedicalRecord) error {
	defer r.s.lock()()
	rec.ID = 0
	return r.put(rec)
}

func (r *memRecords) GetByID(ctx context.Context, id uint) (*models.MedicalRecord, error) {
	defer r.s.lock()()
	rec, ok := r.s.data.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec = r.s.hydrateRecord(rec)
	return &rec, nil
}

func (r *memRecords) GetByAppointmentID(ctx context.Context, appointmentID uint) (*models.MedicalRecord, error) {
	defer r.s.lock()()
	for _, rec := range r.s.data.records {
		if rec.AppointmentID == appointmentID {
			rec = r.s.hydrateRecord(rec)
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRecords) ListByPatient(ctx context.Context, patientID uint) ([]models.MedicalRecord, error) {
	defer r.s.lock()()
	var out []models.MedicalRecord
	for _, id := range sortedKeys(r.s.data.records) {
		if rec := r.s.data.records[id]; rec.PatientID == patientID {
			out = append(out, r.s.hydrateRecord(rec))
		}
	}
	return out, nil
}

func (r *memRecords) ListDispensedBetween(ctx context.Context, from, to time.Time) ([]models.MedicalRecord, error) {
	defer r.s.lock()()
	var out []models.MedicalRecord
	for _, id := range sortedKeys(r.s.data.records) {
		rec := r.s.data.records[id]
		if rec.Status == models.RecordDispensed && !rec.CreatedAt.Before(from) && !rec.CreatedAt.After(to) {
			out = append(out, r.s.hydrateRecord(rec))
		}
	}
	return out, nil
}

func (r *memRecords) ListForAppointments(ctx context.Context, appointmentIDs, recordIDs []uint) ([]models.MedicalRecord, error) {
	defer r.s.lock()()
	wantAppt := make(map[uint]bool, len(appointmentIDs))
	for _, id := range appointmentIDs {
		wantAppt[id] = true
	}
	wantRec := make(map[uint]bool, len(recordIDs))
	for _, id := range recordIDs {
		wantRec[id] = true
	}
	var out []models.MedicalRecord
	for _, id := range sortedKeys(r.s.data.records) {
		rec := r.s.data.records[id]
		if wantAppt[rec.AppointmentID] || wantRec[rec.ID] {
			out = append(out, r.s.hydrateRecord(rec))
		}
	}
	return out, nil
}

func (r *memRecords) Save(ctx context.Context, rec *models.MedicalRecord) error {
	defer r.s.lock()()
	if _, ok := r.s.data.records[rec.ID]; !ok {
		return ErrNotFound
	}
	return r.put(rec)
}

func (r *memRecords) MarkDispensed(ctx context.Context, id uint, at time.Time) (bool, error) {
	defer r.s.lock()()
	rec, ok := r.s.data.records[id]
	if !ok || rec.Status == models.RecordDispensed {
		return false, nil
	}
	rec.Status = models.RecordDispensed
	rec.DispensedAt = &at
	r.s.data.records[id] = rec
	return true, nil
}
