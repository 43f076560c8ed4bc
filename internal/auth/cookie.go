package auth

import (
	"net/http"
)

const userCookie = "_user"

func VerifyUser(r *http.Request, secret []byte) (*Claims, error) {
	cookie, err := r.Cookie(userCookie)
	if err != nil {
		return nil, err
	}
	claims, err := GetClaims(cookie.Value, secret)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func SetAuthCookie(username string, roles []string, w http.ResponseWriter, secret []byte, TTLSeconds int) error {

	token, err := BuildJWTString(username, roles, secret)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{Name: userCookie, Value: token, MaxAge: TTLSeconds}
	http.SetCookie(w, cookie)
	return nil
}
