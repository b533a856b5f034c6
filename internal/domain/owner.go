package domain

import "strconv"

type ownerKind uint8

const (
	ownerNone ownerKind = iota
	ownerUser
	ownerSession
)

// CartOwner идентичность владельца корзины: пользователь или анонимная сессия.
// Нулевое значение невалидно; владельца создают UserOwner или SessionOwner.
type CartOwner struct {
	kind    ownerKind
	userID  int64
	session string
}

func UserOwner(id int64) CartOwner { return CartOwner{kind: ownerUser, userID: id} }

func SessionOwner(token string) CartOwner { return CartOwner{kind: ownerSession, session: token} }

// UserID пользователь-владелец, если есть
func (o CartOwner) UserID() (int64, bool) {
	return o.userID, o.kind == ownerUser
}

// SessionKey ключ анонимной сессии, если есть
func (o CartOwner) SessionKey() (string, bool) {
	return o.session, o.kind == ownerSession
}

func (o CartOwner) IsAnonymous() bool { return o.kind == ownerSession }

func (o CartOwner) Valid() bool {
	switch o.kind {
	case ownerUser:
		return o.userID > 0
	case ownerSession:
		return o.session != ""
	}
	return false
}

func (o CartOwner) String() string {
	switch o.kind {
	case ownerUser:
		return "user:" + strconv.FormatInt(o.userID, 10)
	case ownerSession:
		return "session:" + o.session
	}
	return "none"
}
