package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/core/services"
	"github.com/jakechorley/flightguard/pkg/ingest"
)

type createDatasetRequest struct {
	Name string `json:"name"`
}

func (s *Server) createDataset(c echo.Context) error {
	var req createDatasetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	dataset, err := services.CreateDataset(c.Request().Context(), s.store, s.auth, s.logger, req.Name, actor(c))
	if err != nil {
		return s.fail(c, "create_dataset", err)
	}
	return c.JSON(http.StatusCreated, dataset)
}

func (s *Server) listFlights(c echo.Context) error {
	flights, err := s.store.ListFlights(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, "list_flights", err)
	}
	return c.JSON(http.StatusOK, flights)
}

func (s *Server) listRuns(c echo.Context) error {
	runs, err := s.store.ListRuns(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, "list_runs", err)
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) getTargets(c echo.Context) error {
	targets, err := s.store.GetCategoryTargets(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, "get_targets", err)
	}
	return c.JSON(http.StatusOK, targets)
}

type saveTargetsRequest struct {
	Targets []services.TargetInput `json:"targets"`
}

func (s *Server) saveTargets(c echo.Context) error {
	var req saveTargetsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	targets, err := services.SaveTargets(c.Request().Context(), s.store, s.auth, s.pub, s.logger,
		c.Param("id"), req.Targets, actor(c))
	if err != nil {
		return s.fail(c, "save_targets", err)
	}
	return c.JSON(http.StatusOK, targets)
}

type lockParametersRequest struct {
	WorkDate string `json:"workDate"`
}

func (s *Server) lockParameters(c echo.Context) error {
	var req lockParametersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	settings, err := services.LockParameters(c.Request().Context(), s.store, s.auth, s.pub, s.logger,
		c.Param("id"), req.WorkDate, actor(c))
	if err != nil {
		return s.fail(c, "lock_parameters", err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *Server) importManifest(c echo.Context) error {
	fileHeader, err := c.FormFile("manifest")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "manifest file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to open manifest file")
	}
	defer file.Close()

	records, err := ingest.ParseManifest(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := services.ImportManifest(c.Request().Context(), s.store, s.auth, s.pub, s.logger,
		c.Param("id"), records, actor(c))
	if err != nil {
		return s.fail(c, "import_manifest", err)
	}
	if s.metrics != nil {
		s.metrics.ImportedFlights.Add(float64(result.InsertedCount))
	}
	return c.JSON(http.StatusOK, result)
}

type runAssignmentRequest struct {
	WorkDate string `json:"workDate"`
}

func (s *Server) runAssignment(c echo.Context) error {
	var req runAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := services.RunAutoAssignment(c.Request().Context(), s.store, s.auth, s.pub, s.logger,
		c.Param("id"), req.WorkDate, actor(c))
	if err != nil {
		return s.fail(c, "run_assignment", err)
	}
	if s.metrics != nil {
		s.metrics.AssignmentRuns.Inc()
		s.metrics.AssignedFlights.Add(float64(result.UpdatedFlightCount))
	}
	return c.JSON(http.StatusOK, result)
}

type operateFlightRequest struct {
	// Operated defaults to true; clients that send an explicit false are
	// asking for an un-mark, which the lifecycle rules reject.
	Operated *bool `json:"operated"`
}

type operateFlightResponse struct {
	// Flight is null when another operator already marked the flight.
	Flight *model.Flight `json:"flight"`
}

func (s *Server) operateFlight(c echo.Context) error {
	var req operateFlightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	flightID := c.Param("id")

	marking := req.Operated == nil || *req.Operated

	var flight *model.Flight
	var err error
	if marking {
		flight, err = services.MarkOperated(ctx, s.store, s.auth, s.pub, s.logger, flightID, actor(c))
	} else {
		flight, err = services.SetOperated(ctx, s.store, s.auth, s.pub, s.logger, flightID, false, actor(c))
	}
	if err != nil {
		return s.fail(c, "operate_flight", err)
	}

	if s.metrics != nil && marking {
		if flight != nil {
			s.metrics.OperatedFlights.Inc()
		} else {
			s.metrics.OperateConflicts.Inc()
		}
	}
	return c.JSON(http.StatusOK, operateFlightResponse{Flight: flight})
}
