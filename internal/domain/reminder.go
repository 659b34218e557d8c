package domain

import (
	"fmt"
	"strings"
)

const (
	defaultPatientName = "paciente"
	missingValue       = "-"
)

// PatientName joins first and last name, falling back to a generic greeting.
func (i Intent) PatientName() string {
	parts := make([]string, 0, 2)
	for _, name := range []string{i.Field(FieldFirstName), i.Field(FieldLastName)} {
		if name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return defaultPatientName
	}
	return strings.Join(parts, " ")
}

// ChatText returns the free-form text when present, otherwise the rendered reminder.
func (i Intent) ChatText() string {
	if text := i.Field(FieldText); text != "" {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s 👋\n\n", i.PatientName())
	b.WriteString("Le recordamos su turno odontológico:\n\n")
	writeAppointment(&b, i)
	b.WriteString("\nSi no puede asistir, por favor comuníquese con el consultorio.")
	return b.String()
}

// EmailSubject returns the requested subject or the reminder subject for clinic.
func (i Intent) EmailSubject(clinic string) string {
	if subject := i.Field(FieldSubject); subject != "" {
		return subject
	}
	return fmt.Sprintf("Recordatorio de turno odontológico - %s", clinic)
}

// EmailText returns the free-form text when present, otherwise the rendered reminder.
func (i Intent) EmailText(clinic string) string {
	if text := i.Field(FieldText); text != "" {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", i.PatientName())
	b.WriteString("Le recordamos su próximo turno odontológico:\n\n")
	writeAppointment(&b, i)
	b.WriteString("\nSi necesita reprogramar o cancelar el turno, por favor comuníquese con el consultorio.\n\n")
	fmt.Fprintf(&b, "Saludos,\nEquipo %s", clinic)
	return b.String()
}

func writeAppointment(b *strings.Builder, i Intent) {
	fmt.Fprintf(b, "🗓 Fecha: %s\n", orMissing(i.Field(FieldDate)))
	fmt.Fprintf(b, "⏰ Hora: %s\n", orMissing(i.Field(FieldTime)))
	fmt.Fprintf(b, "👨‍⚕️ Profesional: %s\n", orMissing(i.Field(FieldPractitioner)))
}

func orMissing(value string) string {
	if value == "" {
		return missingValue
	}
	return value
}
