package models

// Permission constants
const (
	// User management
	PermissionUserRead  = "user:read"
	PermissionUserWrite = "user:write"

	// Partners and contracts
	PermissionPartnerRead   = "partner:read"
	PermissionPartnerWrite  = "partner:write"
	PermissionContractWrite = "contract:write"

	// Operation types and payment methods
	PermissionOperationRead  = "operation:read"
	PermissionOperationWrite = "operation:write"

	// Transactions
	PermissionTransactionRead     = "transaction:read"
	PermissionTransactionExecute  = "transaction:execute"
	PermissionTransactionValidate = "transaction:validate"

	// Recharges
	PermissionRechargeRead    = "recharge:read"
	PermissionRechargeRequest = "recharge:request"
	PermissionRechargeApprove = "recharge:approve"

	// Prepaid cards
	PermissionCardRead  = "card:read"
	PermissionCardWrite = "card:write"
	PermissionCardSell  = "card:sell"

	// Balances
	PermissionBalanceRead   = "balance:read"
	PermissionBalanceAdjust = "balance:adjust"

	// Self-service
	PermissionChangePassword = "user:change-password"
	PermissionDashboard      = "dashboard:read"
)

// SousAdminGrantable lists what an administrator may delegate to a sub-admin.
var SousAdminGrantable = []string{
	PermissionUserRead,
	PermissionUserWrite,
	PermissionPartnerRead,
	PermissionPartnerWrite,
	PermissionContractWrite,
	PermissionOperationRead,
	PermissionTransactionRead,
	PermissionTransactionValidate,
	PermissionRechargeRead,
	PermissionRechargeApprove,
	PermissionCardRead,
	PermissionCardWrite,
	PermissionBalanceRead,
}

// GetDefaultPermissions returns default permissions based on role.
// Sub-admins get the baseline plus whatever was granted to them.
func GetDefaultPermissions(role string, granted ...string) []string {
	switch role {
	case RoleAdminGeneral:
		return []string{
			PermissionUserRead,
			PermissionUserWrite,
			PermissionPartnerRead,
			PermissionPartnerWrite,
			PermissionContractWrite,
			PermissionOperationRead,
			PermissionOperationWrite,
			PermissionTransactionRead,
			PermissionTransactionValidate,
			PermissionRechargeRead,
			PermissionRechargeApprove,
			PermissionCardRead,
			PermissionCardWrite,
			PermissionBalanceRead,
			PermissionBalanceAdjust,
			PermissionChangePassword,
			PermissionDashboard,
		}
	case RoleSousAdmin:
		perms := []string{PermissionChangePassword, PermissionDashboard}
		for _, p := range granted {
			if IsGrantable(p) {
				perms = append(perms, p)
			}
		}
		return perms
	case RoleDeveloper:
		return []string{
			PermissionOperationRead,
			PermissionOperationWrite,
			PermissionTransactionRead,
			PermissionChangePassword,
			PermissionDashboard,
		}
	case RolePartner:
		return []string{
			PermissionUserRead,
			PermissionUserWrite,
			PermissionPartnerRead,
			PermissionOperationRead,
			PermissionTransactionRead,
			PermissionRechargeRead,
			PermissionBalanceRead,
			PermissionChangePassword,
			PermissionDashboard,
		}
	case RoleAgent:
		return []string{
			PermissionOperationRead,
			PermissionTransactionRead,
			PermissionTransactionExecute,
			PermissionRechargeRead,
			PermissionRechargeRequest,
			PermissionCardRead,
			PermissionCardSell,
			PermissionBalanceRead,
			PermissionChangePassword,
			PermissionDashboard,
		}
	default:
		return []string{}
	}
}

// IsGrantable reports whether p may be delegated to a sub-admin.
func IsGrantable(p string) bool {
	for _, g := range SousAdminGrantable {
		if g == p {
			return true
		}
	}
	return false
}
