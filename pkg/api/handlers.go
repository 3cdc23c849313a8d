package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// start handles POST /experiments.
func (s *Server) start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "invalid_request", Message: err.Error()})
		return
	}

	cfg := domain.ExperimentConfig{
		Scenario:        req.Scenario,
		TotalEpisodes:   req.TotalEpisodes,
		EnableMemory:    req.EnableMemory,
		EnableEvolution: req.EnableEvolution,
		EnableDefense:   req.EnableDefense,
		Weights: domain.RewardWeights{
			Short:     req.Weights.Short,
			Long:      req.Weights.Long,
			Violation: req.Weights.Violation,
		},
		Epsilon:    req.Epsilon,
		StrictMode: req.StrictMode,
		Seed:       req.Seed,
	}

	exp, err := s.supervisor.Start(req.Name, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, StartResponse{UUID: exp.UUID, Status: exp.Status})
}

// list handles GET /experiments.
func (s *Server) list(c *gin.Context) {
	exps := s.supervisor.List()
	out := make([]SummaryResponse, 0, len(exps))
	for _, exp := range exps {
		out = append(out, summaryResponse(exp))
	}
	c.JSON(http.StatusOK, out)
}

// status handles GET /experiments/:uuid.
func (s *Server) status(c *gin.Context) {
	exp, err := s.supervisor.Status(c.Param("uuid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResponse(exp))
}

// metrics handles GET /experiments/:uuid/metrics.
func (s *Server) metrics(c *gin.Context) {
	exp, err := s.supervisor.Status(c.Param("uuid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statisticsResponse(exp.Stats))
}

func (s *Server) pause(c *gin.Context) {
	if err := s.supervisor.Pause(c.Param("uuid")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) resume(c *gin.Context) {
	if err := s.supervisor.Resume(c.Param("uuid")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) stop(c *gin.Context) {
	if err := s.supervisor.Stop(c.Param("uuid")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) reset(c *gin.Context) {
	if err := s.supervisor.Reset(c.Param("uuid")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) defenseStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, defenseStatisticsResponse(s.supervisor.DefenseStatistics()))
}

func (s *Server) resetDefenseStatistics(c *gin.Context) {
	s.supervisor.ResetDefenseStatistics()
	c.JSON(http.StatusOK, okResponse{OK: true})
}
