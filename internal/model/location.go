package model

type PermissionStatus string

const (
	PermissionPending     PermissionStatus = "pending"
	PermissionGranted     PermissionStatus = "granted"
	PermissionDenied      PermissionStatus = "denied"
	PermissionUnavailable PermissionStatus = "unavailable"
)

func (s PermissionStatus) IsValid() bool {
	switch s {
	case PermissionPending, PermissionGranted, PermissionDenied, PermissionUnavailable:
		return true
	default:
		return false
	}
}

type UserLocation struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

type LocationState struct {
	Status    PermissionStatus `json:"permissionStatus"`
	Location  *UserLocation    `json:"location"`
	IsLoading bool             `json:"isLoading"`
	Error     string           `json:"error,omitempty"`
}
