// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package netaddr

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/go-sockaddr"
)

// ErrNoAdvertiseAddress is returned when the host has neither a private nor a
// public interface address to advertise for a wildcard bind.
var ErrNoAdvertiseAddress = errors.New("no private or public IP address found to advertise")

// SplitHostPort resolves a TCP address into its ip and port
func SplitHostPort(address string) (string, int, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return "", 0, err
	}
	return addr.IP.String(), addr.Port, nil
}

// AdvertiseIP returns the ip peers should dial to reach a socket bound on
// address. A concrete ip is returned as is. For the wildcard address a
// private interface address is preferred, then a public one.
func AdvertiseIP(address string) (string, error) {
	ip, _, err := SplitHostPort(address)
	if err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || !parsed.IsUnspecified() {
		return ip, nil
	}

	candidate, err := sockaddr.GetPrivateIP()
	if err != nil {
		return "", fmt.Errorf("failed to get private interface addresses: %w", err)
	}

	if candidate == "" {
		candidate, err = sockaddr.GetPublicIP()
		if err != nil {
			return "", fmt.Errorf("failed to get public interface addresses: %w", err)
		}
	}

	if candidate == "" {
		return "", ErrNoAdvertiseAddress
	}

	advertised := net.ParseIP(candidate)
	if advertised == nil {
		return "", fmt.Errorf("failed to parse interface address: %q", candidate)
	}
	return advertised.String(), nil
}

// AdvertiseAddress is AdvertiseIP joined with the port of address
func AdvertiseAddress(address string) (string, error) {
	_, port, err := SplitHostPort(address)
	if err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}

	ip, err := AdvertiseIP(address)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(ip, strconv.Itoa(port)), nil
}
