package models

// Query parameters of the analysis endpoints.

type AnalysisRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required,max=20,ticker"`
	CompanyName string `query:"company" json:"company_name" validate:"max=120"`
}

type ReportTextRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required,max=20,ticker"`
	CompanyName string `query:"company" json:"company_name" validate:"max=120"`
	Format      string `query:"format" json:"format" default:"text" validate:"oneof=text json"`
}
