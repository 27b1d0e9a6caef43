package dto

// ClientRequest is the body of POST and PUT /v1/clients. An empty type
// defaults to Detail.
type ClientRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=200"`
	Phone   string `json:"phone"   validate:"required,max=40"`
	Address string `json:"address" validate:"required,max=300"`
	Type    string `json:"type"    validate:"omitempty,oneof=Gros Detail"`
}
