package handlers

import (
	"net/http"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      List packages
// @Description  Lists the package catalog with reconciled subscriber counts.
// @Tags         Packages
// @Produce      json
// @Success      200  {object}  handlers.RespPackages
// @Router       /api/v1/packages [get]
func ApiListPackages(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		pkgs, err := svc.ListPackages(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(pkgs))
	}
}

// @Summary      Add package
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        request body billing.PackageInput true "Package"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/packages [post]
func ApiAddPackage(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.PackageInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.AddPackage(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Edit package
// @Description  Updates a package. Open payments of its subscribers are repriced.
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        id path string true "Package ID"
// @Param        request body billing.PackageInput true "Package"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/packages/{id} [put]
func ApiEditPackage(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.PackageInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.EditPackage(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Delete package
// @Description  Deletes a package. Open payments of its subscribers are archived.
// @Tags         Packages
// @Produce      json
// @Param        id path string true "Package ID"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/packages/{id} [delete]
func ApiDeletePackage(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.DeletePackage(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPackageRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("", ApiListPackages(svc))
	r.POST("", ApiAddPackage(svc))
	r.PUT("/:id", ApiEditPackage(svc))
	r.DELETE("/:id", ApiDeletePackage(svc))
}
