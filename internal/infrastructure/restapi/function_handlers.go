package restapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/app/service"
	"massa_gateway/internal/domain/entity"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FunctionHandler serves the gateway functions under /functions/v1.
type FunctionHandler struct {
	balance   port.BalanceService
	datastore port.DatastoreService
	goals     port.GoalService
}

// NewFunctionHandler creates a new instance of FunctionHandler.
func NewFunctionHandler(balance port.BalanceService, datastore port.DatastoreService, goals port.GoalService) *FunctionHandler {
	return &FunctionHandler{balance: balance, datastore: datastore, goals: goals}
}

type balanceRequest struct {
	Message string `json:"message"`
	Network string `json:"network"`
	Final   bool   `json:"final"`
}

type datastoreRequest struct {
	Message string `json:"message"`
	Network string `json:"network"`
	DataKey string `json:"dataKey"`
}

type courseMessageRequest struct {
	Message  string   `json:"message"`
	CourseID courseID `json:"courseId"`
}

type courseTitleRequest struct {
	Message string `json:"message"`
}

// courseID accepts both string and numeric ids.
type courseID string

func (id *courseID) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(json, data)
	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		*id = courseID(iter.ReadString())
		return iter.Error
	case jsoniter.NumberValue:
		num := iter.ReadNumber()
		if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
			return iter.Error
		}
		*id = courseID(num.String())
		return nil
	case jsoniter.NilValue:
		*id = ""
		return nil
	}
	return fmt.Errorf("courseId must be a string or a number")
}

// bindBody decodes the JSON request body into dst. It writes the 400 reply
// itself and reports false when the body is unusable.
func bindBody(c *gin.Context, dst any) bool {
	raw, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		writeServiceError(c, entity.WrapServiceError(entity.KindInvalidRequest, "Request body must be a valid JSON object", err))
		return false
	}
	return true
}

// CheckBalance handles POST /functions/v1/check-massa-balance.
func (h *FunctionHandler) CheckBalance(c *gin.Context) {
	var req balanceRequest
	if !bindBody(c, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeServiceError(c, entity.NewServiceError(entity.KindMissingField, service.MsgBalanceAddressRequired))
		return
	}
	network, err := entity.ParseNetworkSelector(req.Network, entity.Mainnet)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	result, err := h.balance.GetBalance(c.Request.Context(), entity.AddressQuery{
		Address:   req.Message,
		Network:   network,
		Finalized: req.Final,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeSuccess(c, "", result)
}

// CheckBalanceAll handles POST /functions/v1/check-massa-balance-all. It
// answers 200 whenever the request itself is valid; per-network failures are
// reported inside the result.
func (h *FunctionHandler) CheckBalanceAll(c *gin.Context) {
	var req balanceRequest
	if !bindBody(c, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeServiceError(c, entity.NewServiceError(entity.KindMissingField, service.MsgBalanceAddressRequired))
		return
	}
	result := h.balance.CheckAllNetworks(c.Request.Context(), req.Message, req.Final)
	writeSuccess(c, "", result)
}

// ReadSmartContract handles POST /functions/v1/read-smart-contract.
func (h *FunctionHandler) ReadSmartContract(c *gin.Context) {
	var req datastoreRequest
	if !bindBody(c, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeServiceError(c, entity.NewServiceError(entity.KindMissingField, service.MsgContractAddressRequired))
		return
	}
	network, err := entity.ParseNetworkSelector(req.Network, entity.Buildnet)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	result, err := h.datastore.ReadEntry(c.Request.Context(), entity.DatastoreQuery{
		ContractAddress: req.Message,
		Key:             req.DataKey,
		Network:         network,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeSuccess(c, "Smart contract data retrieved successfully", result)
}

// CourseMessage handles POST /functions/v1/course-message-handler.
func (h *FunctionHandler) CourseMessage(c *gin.Context) {
	var req courseMessageRequest
	if !bindBody(c, &req) {
		return
	}
	data, err := h.goals.Relay(c.Request.Context(), string(req.CourseID), req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeSuccess(c, "", data)
}

// CourseTitle handles POST /functions/v1/course-handler.
func (h *FunctionHandler) CourseTitle(c *gin.Context) {
	var req courseTitleRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Message == "" {
		writeServiceError(c, entity.NewServiceError(entity.KindMissingField, "Missing required field: message"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeServiceError(c, entity.NewServiceError(entity.KindMissingField, "Course title cannot be empty"))
		return
	}
	writeMessage(c, http.StatusOK, fmt.Sprintf(`Course "%s" processed successfully`, req.Message))
}
