package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

// Appointment statuses. Unlike report statuses these form no state machine:
// any status is reachable from any other by a plain overwrite.
const (
	AppointmentStatusScheduled AppointmentStatus = "Agendada"
	AppointmentStatusAttended  AppointmentStatus = "Atendida"
	AppointmentStatusPostponed AppointmentStatus = "Adiada"
	AppointmentStatusCancelled AppointmentStatus = "Cancelada"
)

// ValidAppointmentStatus reports whether s belongs to the fixed vocabulary.
func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusAttended,
		AppointmentStatusPostponed, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientName string            `json:"patient_name" db:"patient_name"`
	DoctorID    uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	DoctorName  string            `json:"doctor_name" db:"doctor_name"`
	Date        string            `json:"date" db:"date"`
	Time        string            `json:"time" db:"time"`
	Status      AppointmentStatus `json:"status" db:"status"`
}

type CreateAppointmentRequest struct {
	PatientName string `json:"patient_name" binding:"required"`
	DoctorID    string `json:"doctor_id" binding:"required,uuid"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string `json:"time" binding:"required,datetime=15:04"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,appointment_status"`
}

type AppointmentFilters struct {
	DoctorID uuid.UUID
	Status   AppointmentStatus
}
