package http

import (
	"fmt"
	"net/http"

	"danceschool/entities"

	"github.com/labstack/echo/v4"
)

func (h Handler) PostEvent(c echo.Context) error {
	var event entities.DanceEvent
	if err := c.Bind(&event); err != nil {
		return err
	}
	if event.Title == "" || event.Venue == "" || event.Capacity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "title, venue and a positive capacity are required")
	}

	resp, err := h.eventRepo.Create(c.Request().Context(), event)
	if err != nil {
		return fmt.Errorf("failed creating event: %w", err)
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h Handler) GetEvents(c echo.Context) error {
	upcomingOnly := c.QueryParam("upcoming") == "true"

	events, err := h.eventRepo.List(c.Request().Context(), upcomingOnly)
	if err != nil {
		return fmt.Errorf("failed listing events: %w", err)
	}

	return c.JSON(http.StatusOK, events)
}

func (h Handler) GetEventByID(c echo.Context) error {
	event, err := h.eventRepo.GetByID(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, event)
}

func (h Handler) PutEvent(c echo.Context) error {
	var event entities.DanceEvent
	if err := c.Bind(&event); err != nil {
		return err
	}
	event.EventID = c.Param("event_id")

	updated, err := h.eventRepo.Update(c.Request().Context(), event)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h Handler) DeleteEvent(c echo.Context) error {
	err := h.eventRepo.Delete(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
