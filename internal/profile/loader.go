package profile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML profile and returns it with the raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Profile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read profile: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return p, data, nil
}

// Parse decodes and validates profile YAML
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	if p.Schedule.RefreshCron == "" {
		p.Schedule.RefreshCron = DefaultRefreshCron
	}

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Hash generates SHA256 hash from Profile (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(p *Profile) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
