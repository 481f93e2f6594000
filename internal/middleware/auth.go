package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
)

// LocalsAdminEmail is where AdminAuth stores the verified actor identity.
const LocalsAdminEmail = "adminEmail"

// AuthAttemptLogger receives every authorization decision for audit
// logging. Failures inside the logger are the logger's problem.
type AuthAttemptLogger func(c *fiber.Ctx, email string, granted bool)

var emailMaskRe = regexp.MustCompile(`(.{2}).*(@.*)`)

// AdminAuth verifies the bearer token from the identity provider, extracts
// the actor email and checks it against the allow-list. The verified email
// lands in c.Locals(LocalsAdminEmail).
func AdminAuth(cfg *config.AuthConfig, onAttempt AuthAttemptLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"authorized": false,
				"error":      "Not authenticated",
				"message":    "Please sign in to access admin panel",
			})
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"authorized": false,
				"error":      "Not authenticated",
				"message":    "Invalid or expired session token",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"authorized": false,
				"error":      "Not authenticated",
			})
		}
		email, _ := claims["email"].(string)
		if email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"authorized": false,
				"error":      "No email found",
				"message":    "User account has no email address",
			})
		}

		authorized := cfg.IsAuthorized(email)
		if onAttempt != nil {
			onAttempt(c, email, authorized)
		}

		if !authorized {
			masked := make([]string, 0, len(cfg.AuthorizedEmails))
			for _, e := range cfg.AuthorizedEmails {
				masked = append(masked, emailMaskRe.ReplaceAllString(e, "$1****$2"))
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"authorized":       false,
				"userEmail":        email,
				"message":          "Access denied. Your email is not in the authorized admin list.",
				"authorizedEmails": masked,
			})
		}

		c.Locals(LocalsAdminEmail, email)
		return c.Next()
	}
}

// AdminEmail reads the actor identity stored by AdminAuth.
func AdminEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalsAdminEmail).(string)
	return email
}
