package dto

import (
	"encoding/json"
	"math"

	"screw-inspection/domain/models"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Team:      user.Team,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func UsersToUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *UserToUserResponse(&users[i]))
	}
	return out
}

func EngineToResponse(engine *models.InferenceEngine) *EngineResponse {
	if engine == nil {
		return nil
	}
	return &EngineResponse{
		ID:           engine.ID,
		Kind:         string(engine.Kind),
		Version:      engine.Version,
		ArtifactName: engine.ArtifactName,
		SizeBytes:    engine.SizeBytes,
		SizeMB:       math.Round(float64(engine.SizeBytes)/(1<<20)*100) / 100,
		SHA256:       engine.SHA256,
		Description:  engine.Description,
		Active:       engine.Active,
		CreatedByID:  engine.CreatedByID,
		CreatedAt:    engine.CreatedAt,
	}
}

func EnginesToResponses(engines []models.InferenceEngine) []EngineResponse {
	out := make([]EngineResponse, 0, len(engines))
	for i := range engines {
		out = append(out, *EngineToResponse(&engines[i]))
	}
	return out
}

func SupportedKinds() []KindSuffix {
	kinds := models.SupportedEngineKinds()
	out := make([]KindSuffix, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, KindSuffix{Kind: string(k), Suffix: k.ArtifactSuffix()})
	}
	return out
}

func ACModelToResponse(m *models.ACModel) *ACModelResponse {
	if m == nil {
		return nil
	}
	return &ACModelResponse{
		ID:                  m.ID,
		Name:                m.Name,
		Description:         m.Description,
		TargetCount:         m.TargetCount,
		ConfidenceThreshold: m.ConfidenceThreshold,
		CycleTimeSeconds:    m.CycleTimeSeconds,
		EngineID:            m.EngineID,
		Engine:              EngineToResponse(m.Engine),
		Active:              m.Active,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func ACModelsToResponses(ms []models.ACModel) []ACModelResponse {
	out := make([]ACModelResponse, 0, len(ms))
	for i := range ms {
		out = append(out, *ACModelToResponse(&ms[i]))
	}
	return out
}

func SettingsToResponse(s *models.GlobalSettings, active *models.ACModel) *SettingsResponse {
	return &SettingsResponse{
		ActiveModelID:           s.ActiveModelID,
		ActiveModel:             ACModelToResponse(active),
		AllowPublicRegistration: s.AllowPublicRegistration,
		UpdatedAt:               s.UpdatedAt,
	}
}

func InspectionToResponse(r *models.InspectionRecord) *InspectionResponse {
	resp := &InspectionResponse{
		ID:                  r.ID,
		ACModelID:           r.ACModelID,
		UserID:              r.UserID,
		Team:                r.Team,
		EngineID:            r.EngineID,
		Status:              string(r.Status),
		Confidence:          r.Confidence,
		DetectedCount:       r.DetectedCount,
		ExpectedCount:       r.ExpectedCount,
		Delta:               r.Delta,
		ImageReference:      r.ImageReference,
		InferenceDurationMs: r.InferenceDurationMs,
		Timestamp:           r.CreatedAt,
	}
	if r.ACModel != nil {
		resp.ModelName = r.ACModel.Name
	}
	if r.User != nil {
		resp.Username = r.User.Username
	}
	return resp
}

func InspectionsToResponses(records []models.InspectionRecord) []InspectionResponse {
	out := make([]InspectionResponse, 0, len(records))
	for i := range records {
		out = append(out, *InspectionToResponse(&records[i]))
	}
	return out
}

func InspectionToEvent(r *models.InspectionRecord, modelName, username string) InspectionEvent {
	return InspectionEvent{
		Type:          "inspection.recorded",
		ID:            r.ID,
		ModelName:     modelName,
		Team:          r.Team,
		Username:      username,
		Status:        string(r.Status),
		DetectedCount: r.DetectedCount,
		ExpectedCount: r.ExpectedCount,
		Delta:         r.Delta,
		Confidence:    r.Confidence,
		Timestamp:     r.CreatedAt,
	}
}

func AuditLogToResponse(log *models.AuditLog) *AuditLogResponse {
	resp := &AuditLogResponse{
		ID:            log.ID,
		ActorID:       log.ActorID,
		Action:        string(log.Action),
		AffectedTable: log.AffectedTable,
		RecordID:      log.RecordID,
		Description:   log.Description,
		IPAddress:     log.IPAddress,
		CreatedAt:     log.CreatedAt,
	}
	if len(log.Before) > 0 {
		var before any
		if err := json.Unmarshal(log.Before, &before); err == nil {
			resp.Before = before
		}
	}
	if len(log.After) > 0 {
		var after any
		if err := json.Unmarshal(log.After, &after); err == nil {
			resp.After = after
		}
	}
	return resp
}

func AuditLogsToResponses(logs []models.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, *AuditLogToResponse(&logs[i]))
	}
	return out
}

// PassRatePercent converts passed/total to a percentage rounded to two
// decimals. It is 0 when total is 0.
func PassRatePercent(passed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(passed)/float64(total)*10000) / 100
}
