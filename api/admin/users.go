package admin

import (
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"strconv"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListUsers returns every profile on the platform, newest first.
func (adm *AdminRoutesManager) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := adm.userService.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		adm.logger.Error("Failed to list users", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to load users right now"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"users":      result.Data,
			"pagination": result.Pagination,
		}),
		gecho.Send(),
	)
}

// UpdateUserRole promotes or demotes a profile.
func (adm *AdminRoutesManager) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseAdminID(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.UpdateRoleRequest](r)
	if err != nil {
		adm.logger.Warn("Failed to extract role body", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("A valid role is required"),
			gecho.Send(),
		)
		return
	}

	user, err := adm.userService.UpdateRole(r.Context(), userID, tables.UserRole(body.Role))
	if err != nil {
		if lib.IsNotFound(err) {
			gecho.NotFound(w,
				gecho.WithMessage("User not found"),
				gecho.Send(),
			)
			return
		}

		adm.logger.Error("Failed to update role", gecho.Field("error", err), gecho.Field("user_id", userID))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to update the role. Please try again"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Role updated"),
		gecho.WithData(user),
		gecho.Send(),
	)
}

// DeleteUser hard-deletes a profile and its credential.
func (adm *AdminRoutesManager) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseAdminID(w, r)
	if !ok {
		return
	}

	if err := adm.userService.DeleteUser(r.Context(), userID); err != nil {
		if lib.IsNotFound(err) {
			gecho.NotFound(w,
				gecho.WithMessage("User not found"),
				gecho.Send(),
			)
			return
		}

		adm.logger.Error("Failed to delete user", gecho.Field("error", err), gecho.Field("user_id", userID))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to delete the user. Please try again"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("User deleted"),
		gecho.Send(),
	)
}

func parseAdminID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid id"),
			gecho.Send(),
		)
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(r *http.Request) (int, int) {
	page := 1
	pageSize := 20

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if val, err := strconv.Atoi(pageStr); err == nil && val > 0 {
			page = val
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if val, err := strconv.Atoi(sizeStr); err == nil && val > 0 {
			pageSize = val
		}
	}

	return page, pageSize
}
