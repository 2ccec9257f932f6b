// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"github.com/jdfalk/qualification-planner/internal/catalog"
	"github.com/jdfalk/qualification-planner/internal/models"
	"github.com/jdfalk/qualification-planner/internal/staffing"
)

// MatchRequest selects qualifications by catalog name.
type MatchRequest struct {
	Qualifications []string `json:"qualifications"`
}

// VerifyRequest checks a proposed headcount per title against a selection.
type VerifyRequest struct {
	Qualifications []string       `json:"qualifications"`
	TitleCounts    map[string]int `json:"title_counts"`
}

// MatchResponse is the merged staffing plan for a selection.
type MatchResponse struct {
	MatchedQualifications []string                          `json:"matched_qualifications"`
	MatchedDetails        []models.Qualification            `json:"matched_qualifications_details"`
	FinalCounts           *models.Assignment                `json:"final_counts"`
	TypeAttributes        map[string]models.TitleAttributes `json:"type_attributes"`
	TotalStaff            int                               `json:"total_staff"`
}

// VerifyResponse holds one check result per resolved qualification.
type VerifyResponse struct {
	Results []staffing.Result `json:"verification_results"`
}

// ReloadResponse reports the catalog after a reload.
type ReloadResponse struct {
	Reloaded       bool   `json:"reloaded"`
	Qualifications int    `json:"qualifications"`
	Source         string `json:"source,omitempty"`
}

// ImportResponse reports what a workbook import changed.
type ImportResponse struct {
	catalog.SyncReport
	Qualifications int `json:"qualifications"`
}

// MessageResponse provides a consistent format for status messages
type MessageResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse provides a consistent format for health check responses
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Uptime         int64  `json:"uptime_seconds"`
	Timestamp      int64  `json:"timestamp"`
	CatalogSource  string `json:"catalog_source,omitempty"`
	Qualifications int    `json:"qualifications"`
}

// NewMessageResponse creates a new MessageResponse
func NewMessageResponse(message string, code string) *MessageResponse {
	return &MessageResponse{
		Message: message,
		Code:    code,
	}
}
