package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Rana718/transit-studio/internal/types"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

func (s *Server) handlePing(c *fiber.Ctx) error {
	if err := s.adapter.Ping(c.UserContext()); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(fiber.Map{"message": "pong"})
}

func (s *Server) handleGetTables(c *fiber.Ctx) error {
	tables, err := s.service.GetTables(c.UserContext())
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(tables)
}

func (s *Server) handleGetSchema(c *fiber.Ctx) error {
	table, err := pathParam(c, "table")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	schema, err := s.service.GetSchema(c.UserContext(), table)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(schema)
}

func (s *Server) handleListRecords(c *fiber.Ctx) error {
	table, err := pathParam(c, "table")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	page, err := s.service.ListRecords(c.UserContext(), table, types.RowQuery{
		Limit:  limit,
		Offset: offset,
		Search: c.Query("search"),
	})
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(page)
}

func (s *Server) handleCreateRecord(c *fiber.Ctx) error {
	table, err := pathParam(c, "table")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	data, err := decodeRecord(c.Body())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := s.service.CreateRecord(c.UserContext(), table, data)
	if err != nil {
		return failure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) handleUpdateRecord(c *fiber.Ctx) error {
	table, pk, err := recordParams(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	data, err := decodeRecord(c.Body())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := s.service.UpdateRecord(c.UserContext(), table, pk, data)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(record)
}

func (s *Server) handleDeleteRecord(c *fiber.Ctx) error {
	table, pk, err := recordParams(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.service.DeleteRecord(c.UserContext(), table, pk); err != nil {
		return failure(c, err)
	}
	return c.JSON(fiber.Map{})
}

func (s *Server) handleCascadeDelete(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := s.service.CascadeDelete(c.UserContext(), id, types.CascadeOptions{
		DeleteTrips:  c.QueryBool("delete_trips", false),
		DeleteShapes: c.QueryBool("delete_shapes", false),
	})
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(result)
}

// pathParam returns a route parameter with its percent-encoding removed.
// Routing runs on the escaped path, so an encoded "/" stays inside one key.
func pathParam(c *fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", fmt.Errorf("invalid %s in path: %w", name, err)
	}
	return value, nil
}

func recordParams(c *fiber.Ctx) (table, pk string, err error) {
	if table, err = pathParam(c, "table"); err != nil {
		return "", "", err
	}
	if pk, err = pathParam(c, "pk"); err != nil {
		return "", "", err
	}
	return table, pk, nil
}

// decodeRecord parses a JSON object body, keeping integers distinct from
// floats.
func decodeRecord(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return types.NormalizeValues(data), nil
}
