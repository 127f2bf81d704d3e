package interfaces

// TokenRepository 维护服务端的刷新令牌表。
// 不在表中的刷新令牌视为已撤销
type TokenRepository interface {
	Save(token string, userID int) error
	Exists(token string) (bool, error)
	Delete(token string) error
}
