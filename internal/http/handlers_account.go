package httpx

import (
	"errors"
	"net/http"

	"github.com/ticketlab/gatehouse/internal/domain/principal"
)

// AccountHandlers serves the signed-in principal's own view of the
// session. These routes sit behind the guard middleware, so by the time
// they run the right kind of principal is in place.
type AccountHandlers struct {
	Engine Engine
}

// Me returns the current customer profile.
// GET /api/me.
func (h *AccountHandlers) Me(w http.ResponseWriter, _ *http.Request) {
	snap := h.Engine.Snapshot()
	if snap.Principal == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"kind":    string(snap.Principal.PrincipalKind()),
		"profile": snap.Principal,
	})
}

// AdminPermissions returns the permission catalogue alongside the
// current administrator's effective grants, for back-office permission
// management screens.
// GET /api/admin/permissions.
func (h *AccountHandlers) AdminPermissions(w http.ResponseWriter, _ *http.Request) {
	snap := h.Engine.Snapshot()
	admin, ok := snap.Principal.(*principal.Administrator)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "admin_required",
			Err:     errors.New("administrator session required"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"catalogue": principal.Catalogue(),
		"granted":   admin.Permissions,
		"role":      admin.Role,
		"baseline":  principal.DefaultPermissions(admin.Role),
	})
}
