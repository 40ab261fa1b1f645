package auth

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Avatar ссылка на gravatar-аватар (identicon, если картинки нет)
func Avatar(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(sum[:]), size)
}
