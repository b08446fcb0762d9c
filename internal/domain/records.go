package domain

import "time"

// TimestampLayout ISO-8601 UTC with milliseconds, matching what browsers emit.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t the way createdAt is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// InventoryRecord 可用血液库存（捐献或调拨产生，被医院领取后删除）
type InventoryRecord struct {
	ID        string    `json:"id"`
	BloodType BloodType `json:"bloodType"`
	Units     Count     `json:"units"`
	City      string    `json:"city"`
	Hospital  string    `json:"hospital,omitempty"`
	ReadyIn   string    `json:"readyIn,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	Status    string    `json:"status,omitempty"`
	AddedBy   string    `json:"addedBy,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// RequestRecord 紧急用血请求（只追加）
type RequestRecord struct {
	ID             string    `json:"id"`
	BloodType      BloodType `json:"bloodType"`
	Units          Count     `json:"units"`
	City           string    `json:"city"`
	Urgency        string    `json:"urgency,omitempty"`
	ClinicalReason string    `json:"clinicalReason,omitempty"`
	RequestedBy    string    `json:"requestedBy,omitempty"`
	Contact        string    `json:"contact,omitempty"`
	CreatedAt      string    `json:"createdAt"`
}

// HospitalRecord 医院参考数据（外部提供，只读）
type HospitalRecord struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	City        string      `json:"city"`
	BankPartner string      `json:"bankPartner,omitempty"`
	ReadyTypes  []BloodType `json:"readyTypes"`
	Contact     string      `json:"contact,omitempty"`
	Email       string      `json:"email,omitempty"`
}

// Role values are self-declared and never verified.
const (
	RoleHospital        = "Hospital"
	RoleIndividualDonor = "Individual donor"
)

// SessionRecord 登录会话（无凭证校验）
type SessionRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role"`
	Organization   string `json:"organization,omitempty"`
	Contact        string `json:"contact,omitempty"`
	HospitalAccess bool   `json:"hospitalAccess"`
}

// IsHospital reports whether the session was declared as a hospital.
func (s SessionRecord) IsHospital() bool { return s.Role == RoleHospital }

// Actor converts the session into the identity passed to ledger calls.
func (s SessionRecord) Actor() *Actor {
	return &Actor{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Role:         s.Role,
		Organization: s.Organization,
		Contact:      s.Contact,
	}
}

// Document 持久化的唯一单元：四个集合整体读写
type Document struct {
	Inventory []InventoryRecord `json:"inventory"`
	Requests  []RequestRecord   `json:"requests"`
	Hospitals []HospitalRecord  `json:"hospitals"`
	Sessions  []SessionRecord   `json:"sessions"`
}

// NewDocument returns the empty seed document.
func NewDocument() Document {
	return Document{
		Inventory: []InventoryRecord{},
		Requests:  []RequestRecord{},
		Hospitals: []HospitalRecord{},
		Sessions:  []SessionRecord{},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// encodes four arrays.
func (d *Document) Normalize() {
	if d.Inventory == nil {
		d.Inventory = []InventoryRecord{}
	}
	if d.Requests == nil {
		d.Requests = []RequestRecord{}
	}
	if d.Hospitals == nil {
		d.Hospitals = []HospitalRecord{}
	}
	if d.Sessions == nil {
		d.Sessions = []SessionRecord{}
	}
}

// Prepend puts item first and keeps at most limit entries (limit <= 0 keeps all).
func Prepend[T any](list []T, item T, limit int) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	out = append(out, list...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Retention 每个集合保留的最大条数（最新在前）
type Retention struct {
	Inventory int
	Requests  int
	Sessions  int
}

// DefaultRetention matches the server caps.
func DefaultRetention() Retention {
	return Retention{Inventory: 200, Requests: 200, Sessions: 50}
}
