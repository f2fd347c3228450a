package view

import (
	"fmt"
	"html/template"
	"time"

	"github.com/agendacitas/agenda/internal/calendar"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var dayNames = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// MonthName returns the Spanish name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// LongDate formats a YYYY-MM-DD date as "martes 10 de junio de 2025".
// Unparseable input is returned unchanged.
func LongDate(date string) string {
	t, err := calendar.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d de %s de %d", dayNames[t.Weekday()], t.Day(), MonthName(t.Month()), t.Year())
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"monthName": MonthName,
		"longDate":  LongDate,
		"weekdays": func() []string {
			return []string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}
		},
		"count": func(counts map[string]int, date string) int {
			return counts[date]
		},
		"int": func(m time.Month) int { return int(m) },
	}
}
