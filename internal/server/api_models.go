package server

import (
	"github.com/raysh454/imola/internal/roles"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Content string `json:"content"`
}

// DictionaryResponse describes the loaded role dictionary.
type DictionaryResponse struct {
	Roles      []roles.Role         `json:"roles"`
	Synergy    []roles.SynergyEntry `json:"synergy"`
	GroupBonus float64              `json:"group_bonus"`
	MaxScore   float64              `json:"max_score"`
	Warnings   []string             `json:"warnings"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

func dictionaryResponse(d *roles.Dictionary) DictionaryResponse {
	warnings := d.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	return DictionaryResponse{
		Roles:      d.Roles(),
		Synergy:    d.SynergyPairs(),
		GroupBonus: d.GroupBonus(),
		MaxScore:   d.MaxScore(),
		Warnings:   warnings,
	}
}
