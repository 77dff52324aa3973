package web

import "github.com/brvnobarreto/activity-log-controller/internal/domain"

type Repos struct {
	Users domain.UsersRepo
	Acts  domain.ActivitiesRepo
}

type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}
