package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B0000"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CC0000"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func renderFacilities(w io.Writer, facilities []entities.Facility) {
	rows := make([][]string, len(facilities))
	for i, f := range facilities {
		rows[i] = []string{f.Name, f.Region, f.EmergencyContact, f.SecondaryContact}
	}
	renderTable(w, []string{"Hospital", "City", "Emergency", "Blood bank"}, rows)
}

func renderDonors(w io.Writer, donors []entities.Donor) {
	rows := make([][]string, len(donors))
	for i, d := range donors {
		rows[i] = []string{d.Name, string(d.BloodType), d.FacilityName, d.Region, d.Phone}
	}
	renderTable(w, []string{"Name", "Blood", "Hospital", "City", "Phone"}, rows)
}

func renderMatches(w io.Writer, matches []entities.DonorMatch) {
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			m.Donor.Name,
			string(m.Donor.BloodType),
			m.Donor.FacilityName,
			strconv.FormatFloat(m.DistanceKm, 'f', 2, 64) + " km",
			m.Donor.Phone,
		}
	}
	renderTable(w, []string{"#", "Name", "Blood", "Hospital", "Distance", "Phone"}, rows)
}

func renderRequests(w io.Writer, requests []entities.EmergencyRequest) {
	rows := make([][]string, len(requests))
	for i, r := range requests {
		rows[i] = []string{
			strconv.Itoa(r.SequenceID),
			r.PatientName,
			string(r.BloodType),
			r.Facility.Name,
			r.Urgency,
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	renderTable(w, []string{"#", "Patient", "Blood", "Hospital", "Urgency", "Created"}, rows)
}
