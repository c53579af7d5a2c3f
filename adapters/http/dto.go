package http

import (
	"time"

	authUC "github.com/minhvu/portfolio-hub/internal/application/usecase/auth"
	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
)

// Auth DTOs
type LoginRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type SessionDTO struct {
	Username   string    `json:"username"`
	LoginTime  time.Time `json:"loginTime"`
	Expires    time.Time `json:"expires"`
	RememberMe bool      `json:"rememberMe"`
}

type LoginResponse struct {
	AccessToken string     `json:"accessToken"`
	Session     SessionDTO `json:"session"`
}

func ToSessionDTO(s authUC.Session) SessionDTO {
	return SessionDTO{
		Username:   s.Username,
		LoginTime:  s.LoginTime,
		Expires:    s.Expires,
		RememberMe: s.RememberMe,
	}
}

// Document DTOs
type SaveResultDTO struct {
	Synced bool `json:"synced"`
}

type EntryRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

type UpdateProfileRequest struct {
	Profile portfolio.Profile `json:"profile" binding:"required"`
}

type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

type ClearRequest struct {
	Confirm      bool   `json:"confirm"`
	Confirmation string `json:"confirmation"`
}

type RestoreBackupRequest struct {
	Key     string `json:"key" binding:"required"`
	Confirm bool   `json:"confirm"`
}

type BackupInfoDTO struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func ToBackupInfoDTOs(infos []portfolio.BackupInfo) []BackupInfoDTO {
	dtos := make([]BackupInfoDTO, len(infos))
	for i, info := range infos {
		dtos[i] = BackupInfoDTO{Key: info.Key, Timestamp: info.Timestamp}
	}
	return dtos
}

type StatusDTO struct {
	State           string `json:"state"`
	RemoteAvailable bool   `json:"remoteAvailable"`
	Mode            string `json:"mode"`
}

func ToStatusDTO(s documentUC.Status) StatusDTO {
	return StatusDTO{
		State:           string(s.State),
		RemoteAvailable: s.RemoteAvailable,
		Mode:            s.Mode,
	}
}
