// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mnemonic generates and validates BIP-39 mnemonic phrases.
//
// Phrases are generated from the operating system's cryptographically secure
// random source and use the English wordlist. Nothing generated here is
// stored.
package mnemonic

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
)

const (
	// DefaultEntropyBits produces a 24 word phrase
	DefaultEntropyBits = 256

	WordCount = 24
)

var (
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrInvalidEntropyLen = errors.New("entropy length must be a multiple of 32 between 128 and 256 bits")
)

var wordIndex map[string]int

func init() {
	// Always use the English wordlist, regardless of any global set elsewhere
	bip39.SetWordList(wordlists.English)
	wordIndex = make(map[string]int, len(wordlists.English))
	for i, word := range wordlists.English {
		wordIndex[word] = i
	}
}

// Generate returns a new 24 word mnemonic phrase
func Generate() (string, error) {
	return GenerateWithEntropy(DefaultEntropyBits)
}

// GenerateWithEntropy returns a new mnemonic phrase for the given number of
// entropy bits
func GenerateWithEntropy(bits int) (string, error) {
	if bits < 128 || bits > 256 || bits%32 != 0 {
		return "", ErrInvalidEntropyLen
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	ret, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return ret, nil
}

// Normalize collapses whitespace between the words of a phrase
func Normalize(m string) string {
	return strings.Join(strings.Fields(m), " ")
}

// Words splits a phrase into its words
func Words(m string) []string {
	return strings.Fields(m)
}

// IsWord returns whether the word is in the wordlist
func IsWord(word string) bool {
	_, ok := wordIndex[word]
	return ok
}

// Validate checks that every word is in the wordlist and that the checksum
// is correct
func Validate(m string) error {
	words := Words(m)
	if len(words) == 0 {
		return fmt.Errorf("%w: empty phrase", ErrInvalidMnemonic)
	}
	for i, word := range words {
		if !IsWord(word) {
			return fmt.Errorf(
				"%w: word %d (%q) is not in the wordlist",
				ErrInvalidMnemonic,
				i+1,
				word,
			)
		}
	}
	if _, err := bip39.EntropyFromMnemonic(strings.Join(words, " ")); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return nil
}

// ToSeed derives the 64 byte seed for a mnemonic phrase and optional passphrase
func ToSeed(m string, passphrase string) ([]byte, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	return bip39.NewSeed(Normalize(m), passphrase), nil
}

// ToHexSeed returns the 0x-prefixed hex encoding of the seed for a mnemonic
// phrase, with no passphrase
func ToHexSeed(m string) (string, error) {
	seed, err := ToSeed(m, "")
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(seed), nil
}
