package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-orders/internal/authz"
	"restaurant-orders/internal/dto"
	"restaurant-orders/pkg/api"
	apperrors "restaurant-orders/pkg/errors"
	"restaurant-orders/pkg/service"
	"restaurant-orders/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth resolves the bearer token into dto.UserClaims on the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return api.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return api.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return api.ErrorResponse(c, err)
		}

		ctx := utils.WithClaims(c.Request().Context(), &dto.UserClaims{UserID: claims.UserID, Role: claims.Role})
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован",
			zap.String("userID", claims.UserID), zap.String("role", claims.Role))

		return next(c)
	}
}

// RequirePermission answers 403 unless the authenticated role holds permission.
// Order creation is gated in the service instead, since its role check must
// run before validation and carries its own message.
func (m *AuthMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := utils.GetClaimsFromContext(c.Request().Context())
			if err != nil {
				return api.ErrorResponse(c, err)
			}
			if !authz.Can(claims.Role, permission) {
				m.logger.Warn("AuthMiddleware: доступ запрещен",
					zap.String("userID", claims.UserID), zap.String("permission", permission))
				return api.ErrorResponse(c, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}
