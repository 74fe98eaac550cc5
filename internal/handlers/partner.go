package handlers

import (
	"relais/internal/commission"
	"relais/internal/repositories"
	"relais/internal/services/partner"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// PartnerHandler serves partners and their commission contracts.
type PartnerHandler struct {
	partnerService partner.Service
}

func NewPartnerHandler(partnerService partner.Service) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

func (h *PartnerHandler) Create(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input partner.CreatePartnerInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	p, err := h.partnerService.CreatePartner(c.UserContext(), claims, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Partner created", p)
}

func (h *PartnerHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	p := pagination.ParseFromRequest(c)
	partners, total, err := h.partnerService.ListPartners(c.UserContext(), claims,
		repositories.PartnerFilter{Status: c.Query("status"), Search: c.Query("q")}, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, partners))
}

func (h *PartnerHandler) Get(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	p, err := h.partnerService.GetPartner(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Partner retrieved", p)
}

func (h *PartnerHandler) SetStatus(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	p, err := h.partnerService.SetPartnerStatus(c.UserContext(), claims, id, input.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Partner status updated", p)
}

// ListContracts lists every contract of the partner in the route.
func (h *PartnerHandler) ListContracts(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	contracts, err := h.partnerService.ListContracts(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contracts retrieved", contracts)
}

func (h *PartnerHandler) ActiveContract(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.ActiveContract(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Active contract retrieved", contract)
}

func (h *PartnerHandler) CreateContract(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input partner.ContractInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.CreateContract(c.UserContext(), claims, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Contract created", contract)
}

func (h *PartnerHandler) GetContract(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.GetContract(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contract retrieved", contract)
}

func (h *PartnerHandler) UpdateContract(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input partner.ContractUpdate
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.UpdateContract(c.UserContext(), claims, id, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contract updated", contract)
}

func (h *PartnerHandler) AddException(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var exc commission.Exception
	if err := c.BodyParser(&exc); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	contract, err := h.partnerService.AddException(c.UserContext(), claims, id, exc)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Exception added", contract)
}

func (h *PartnerHandler) RemoveException(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return response.BadRequest(c, "invalid exception index")
	}

	contract, err := h.partnerService.RemoveException(c.UserContext(), claims, id, index)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Exception removed", contract)
}

func (h *PartnerHandler) ReorderExceptions(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input struct {
		Order []int `json:"order" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.ReorderExceptions(c.UserContext(), claims, id, input.Order)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Exceptions reordered", contract)
}

// ActivateContract makes the contract the partner's active one. Replacing
// an existing active contract requires ?confirm=true.
func (h *PartnerHandler) ActivateContract(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.ActivateContract(c.UserContext(), claims, id, c.QueryBool("confirm"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contract activated", contract)
}

func (h *PartnerHandler) DeactivateContract(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	contract, err := h.partnerService.DeactivateContract(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contract deactivated", contract)
}
