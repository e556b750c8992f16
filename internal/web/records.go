package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"focusplan/internal/app"
	"focusplan/internal/confirm"
	"focusplan/internal/focus"
	"focusplan/internal/model"
	"focusplan/internal/profile"
	"focusplan/internal/stats"
)

type textRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type profileRequest struct {
	Username *string `json:"username"`
	Theme    *string `json:"theme"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	var tasks []model.Task
	s.app.View(func(st *app.State) { tasks = st.Tasks.Tasks() })
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	var task model.Task
	err := s.app.Update(func(st *app.State) error {
		var err error
		task, err = st.Tasks.Add(req.Title, req.Description)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	var task model.Task
	err := s.app.Update(func(st *app.State) error {
		var err error
		task, err = st.Tasks.Edit(id, req.Title, req.Description)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var ticket confirm.Ticket
	_ = s.app.Update(func(st *app.State) error {
		ticket = st.Tasks.RequestDelete(id)
		return nil
	})
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var session focus.Session
	err := s.app.Update(func(st *app.State) error {
		var err error
		session, err = st.Tasks.Start(id)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var sample model.FocusSample
	err := s.app.Update(func(st *app.State) error {
		var err error
		sample, err = st.FinishSession(id)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (s *Server) handleListTopMind(w http.ResponseWriter, _ *http.Request) {
	var items []model.TopMindItem
	s.app.View(func(st *app.State) { items = st.TopMind.Items() })
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddTopMind(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	var item model.TopMindItem
	err := s.app.Update(func(st *app.State) error {
		var err error
		item, err = st.TopMind.Add(req.Title, req.Description)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleTopMindDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item model.TopMindItem
	err := s.app.Update(func(st *app.State) error {
		var err error
		item, err = st.TopMind.Detail(id)
		return err
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteTopMind(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var ticket confirm.Ticket
	_ = s.app.Update(func(st *app.State) error {
		ticket = st.TopMind.RequestDelete(id)
		return nil
	})
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) handleDistribution(w http.ResponseWriter, _ *http.Request) {
	var res stats.DistributionResult
	s.app.View(func(st *app.State) { res = st.Distribution() })
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	days := parseIntDefault(r.URL.Query().Get("days"), 0)
	if days < 0 || days > 366 {
		writeErr(w, model.Invalid("days", "days must be between 1 and 366"))
		return
	}
	var res stats.TrendSummary
	s.app.View(func(st *app.State) { res = st.Trend(days) })
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	var snap profile.Snapshot
	s.app.View(func(st *app.State) { snap = st.Profile.Snapshot() })
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	var snap profile.Snapshot
	err := s.app.Update(func(st *app.State) error {
		if err := st.Profile.Update(req.Username, req.Theme); err != nil {
			return err
		}
		snap = st.Profile.Snapshot()
		return nil
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResetProfile(w http.ResponseWriter, _ *http.Request) {
	var ticket confirm.Ticket
	_ = s.app.Update(func(st *app.State) error {
		ticket = st.Profile.RequestReset()
		return nil
	})
	writeJSON(w, http.StatusAccepted, ticket)
}
