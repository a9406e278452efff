package request_models

type RegisterRequest struct {
	FullName     string `json:"full_name" binding:"required,min=5,max=120"`
	Cedula       string `json:"cedula" binding:"required,cedula"`
	Phone        string `json:"phone" binding:"required,dophone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Province     string `json:"province" binding:"required"`
	Municipality string `json:"municipality" binding:"omitempty,max=80"`
	ReferralCode string `json:"referral_code" binding:"omitempty,len=8,alphanum"`
}
