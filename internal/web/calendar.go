package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"focusplan/internal/app"
	"focusplan/internal/confirm"
	"focusplan/internal/ics"
	"focusplan/internal/model"
	"focusplan/internal/planner"
)

type navigation int

const (
	navNext navigation = iota
	navPrev
	navToday
)

type dayResponse struct {
	Date   string                `json:"date"`
	Events []model.CalendarEvent `json:"events"`
}

type addEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Date is an optional Day Key; the selected day is used when empty.
	Date string `json:"date"`
}

type selectRequest struct {
	Date string `json:"date"`
}

// handleCalendar renders the current month view. Subscription events are
// re-expanded by Update before it runs.
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	var view planner.MonthView
	s.app.View(func(st *app.State) { view = st.Planner.View() })
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNavigate(nav navigation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = s.app.Update(func(st *app.State) error {
			switch nav {
			case navNext:
				st.Planner.NextMonth()
			case navPrev:
				st.Planner.PrevMonth()
			case navToday:
				st.Planner.GoToToday()
			}
			return nil
		})
		s.handleCalendar(w, r)
	}
}

func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	day, err := s.parseDay(req.Date)
	if err != nil {
		writeErr(w, err)
		return
	}

	_ = s.app.Update(func(st *app.State) error {
		st.Planner.SelectDay(day)
		return nil
	})
	s.handleCalendar(w, r)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["day"]
	day, err := s.parseDay(key)
	if err != nil {
		writeErr(w, err)
		return
	}

	var events []model.CalendarEvent
	s.app.View(func(st *app.State) { events = st.Planner.EventsOn(day) })
	writeJSON(w, http.StatusOK, dayResponse{Date: key, Events: events})
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}

	in := planner.NewEvent{Title: req.Title, Description: req.Description}
	if req.Date != "" {
		day, err := s.parseDay(req.Date)
		if err != nil {
			writeErr(w, err)
			return
		}
		in.Date = &day
	}

	var ev model.CalendarEvent
	err := s.app.Update(func(st *app.State) error {
		var err error
		ev, err = st.Planner.AddEvent(in)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var ticket confirm.Ticket
	err := s.app.Update(func(st *app.State) error {
		var err error
		ticket, err = st.Planner.RequestDeleteEvent(id)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.app.Confirm(mux.Vars(r)["ticket"])
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.app.Cancel(mux.Vars(r)["ticket"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalendarICS(w http.ResponseWriter, _ *http.Request) {
	var events []model.CalendarEvent
	s.app.View(func(st *app.State) { events = st.Planner.LocalEvents() })

	body := ics.Export(events, ics.ExportOptions{Name: "focusplan", Now: time.Now})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="focusplan.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) parseDay(key string) (time.Time, error) {
	day, err := planner.ParseDayKey(key, s.app.Location())
	if err != nil {
		return time.Time{}, model.Invalid("date", "date must be YYYY-MM-DD")
	}
	return day, nil
}
