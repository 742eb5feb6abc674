// Package mocks provides gomock implementations of the ports used by the portal.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockSessionStore(ctrl)
//	store.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=session_store_mock.go github.com/target/programme-portal/internal/ports SessionStore
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_verifier_mock.go github.com/target/programme-portal/internal/ports CredentialVerifier
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=role_policy_mock.go github.com/target/programme-portal/internal/ports RolePolicy
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=role_directory_mock.go github.com/target/programme-portal/internal/ports RoleDirectory
