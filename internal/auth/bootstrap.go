package auth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"signal_board/internal/models"
)

// IssueAdmin выпускает токен администратора с новым uuid. Нужен для первого
// входа: /api/admin/tokens сам требует admin.
func IssueAdmin(j *JWTManager, username string) (models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, "", fmt.Errorf("issue admin: empty username")
	}
	u := models.User{ID: uuid.NewString(), Username: username, Role: models.RoleAdmin}
	token, err := j.Generate(u)
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue admin: %w", err)
	}
	return u, token, nil
}
