package domain

import "errors"

var (
	// ErrInvalidRequest signals a request that fails validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoAccounts signals a multi-account search without any concrete account.
	ErrNoAccounts = errors.New("no accounts selected")
	// ErrEmbeddingProviderError signals an embedding service failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a completion service failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrStorageProviderError signals an object storage failure.
	ErrStorageProviderError = errors.New("storage provider error")
)
