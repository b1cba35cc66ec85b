package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/bnema/amxbpm-admin-cli/internal/ports"
)

var controlChars = strings.NewReplacer("\n", "", "\r", "", "\t", "")

// Encode obfuscates a password for the settings file. It is not encryption.
func Encode(plain string) string {
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

// Decode reverses Encode, dropping line breaks and tabs on either side.
func Decode(obfuscated string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(controlChars.Replace(strings.TrimSpace(obfuscated)))
	if err != nil {
		return "", fmt.Errorf("decode password: %w", err)
	}
	return controlChars.Replace(string(raw)), nil
}

// SecretKey is the secret store entry conventionally used for section.
func SecretKey(section string) string {
	return "amxctl/" + section + "/password"
}

// ResolvePassword reads ref from store when ref is set, and decodes
// obfuscated otherwise.
func ResolvePassword(ctx context.Context, store ports.SecretStore, obfuscated, ref string) (string, error) {
	if ref == "" {
		return Decode(obfuscated)
	}
	if store == nil {
		return "", fmt.Errorf("password reference %q set but no secret store available", ref)
	}

	value, err := store.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve password %q: %w", ref, err)
	}
	return value, nil
}
