// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/app/services"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const oauthStateCookie = "oauth_state"

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Signing in</title></head>
<body>
<script>
(function () {
  var message = {{.Message}};
  if (window.opener) {
    window.opener.postMessage(message, {{.Origin}});
  }
  window.close();
})();
</script>
</body>
</html>
`))

// AuthController handles authentication related operations
type AuthController struct {
	authService  services.AuthService
	openerOrigin string
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthController creates a new AuthController. openerOrigin is the
// frontend origin the OAuth callback page posts its result to.
func NewAuthController(authService services.AuthService, openerOrigin string, secureCookie bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:  authService,
		openerOrigin: openerOrigin,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// MentorLogin handles mentor login
// @Summary Mentor login
// @Description Authenticates a mentor with email and password and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /mentor/login [post]
func (c *AuthController) MentorLogin(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	tokenResponse, err := c.authService.MentorLogin(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Mentor login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("email", req.Email).Msg("Mentor logged in successfully")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tokenResponse))
}

// OAuthLogin redirects the browser to Google sign-in
// @Summary Student sign-in
// @Description Redirects to the Google consent screen. The state is kept in a short-lived cookie.
// @Tags auth
// @Success 307 {string} string "Redirect to Google"
// @Failure 503 {object} dto.ErrorResponse "Google sign-in not configured"
// @Router /auth/login [get]
func (c *AuthController) OAuthLogin(ctx *gin.Context) {
	state := uuid.NewString()
	url, err := c.authService.OAuthLoginURL(state)
	if err != nil {
		if errors.Is(err, services.ErrOAuthDisabled) {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Google sign-in is not configured")))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(oauthStateCookie, state, 600, "/api/auth", "", c.secureCookie, true)
	ctx.Redirect(http.StatusTemporaryRedirect, url)
}

// OAuthCallback completes Google sign-in
// @Summary Student sign-in callback
// @Description Exchanges the authorization code and returns a page that posts the result to the opener window
// @Tags auth
// @Produce html
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /auth/login"
// @Success 200 {string} string "Result page"
// @Router /auth/callback [get]
func (c *AuthController) OAuthCallback(ctx *gin.Context) {
	result := c.completeOAuth(ctx)
	ctx.SetCookie(oauthStateCookie, "", -1, "/api/auth", "", c.secureCookie, true)

	ctx.Header("Content-Type", "text/html; charset=utf-8")
	ctx.Header("Cache-Control", "no-store")
	ctx.Status(http.StatusOK)
	err := callbackPage.Execute(ctx.Writer, struct {
		Message *dto.OAuthResult
		Origin  string
	}{Message: result, Origin: c.openerOrigin})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to render OAuth callback page")
	}
}

func (c *AuthController) completeOAuth(ctx *gin.Context) *dto.OAuthResult {
	if errParam := ctx.Query("error"); errParam != "" {
		c.logger.Warn().Str("error", errParam).Msg("Google sign-in was cancelled")
		return &dto.OAuthResult{Type: services.OAuthError, Error: "Authentication failed"}
	}

	state, err := ctx.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != ctx.Query("state") {
		c.logger.Warn().Msg("OAuth state mismatch")
		return &dto.OAuthResult{Type: services.OAuthError, Error: "Invalid sign-in state"}
	}

	code := ctx.Query("code")
	if code == "" {
		return &dto.OAuthResult{Type: services.OAuthError, Error: "Missing authorization code"}
	}

	result, err := c.authService.CompleteOAuth(ctx.Request.Context(), code)
	if err != nil {
		c.logger.Error().Err(err).Msg("Google sign-in failed")
		return &dto.OAuthResult{Type: services.OAuthError, Error: "Authentication failed"}
	}
	return result
}

// Logout revokes the caller's token
// @Summary Logout
// @Description Revokes the current access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenNotFound)
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), claims); err != nil {
		c.logger.Error().Err(err).Str("userID", claims.UserID).Msg("Logout failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Logged out successfully"}))
}
