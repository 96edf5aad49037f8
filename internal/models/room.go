package models

// Room is a normalized room record supplied by the ingestion layer.
type Room struct {
	RoomNumber string   `json:"roomNumber"`
	Capacity   int      `json:"capacity"`
	IsLab      bool     `json:"isLab"`
	Equipment  []string `json:"equipment,omitempty"`
	Building   string   `json:"building,omitempty"`
}

// HasEquipment reports whether every required item is available in the room.
func (r Room) HasEquipment(required []string) bool {
	if len(required) == 0 {
		return true
	}
	available := make(map[string]struct{}, len(r.Equipment))
	for _, item := range r.Equipment {
		available[item] = struct{}{}
	}
	for _, item := range required {
		if _, ok := available[item]; !ok {
			return false
		}
	}
	return true
}
