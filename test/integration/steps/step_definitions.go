package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

// registerAuthSteps registers the registration and login steps.
func registerAuthSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^a registered user "([^"]*)" with password "([^"]*)"$`, aRegisteredUserWithPassword)
	ctx.Step(`^I register with username "([^"]*)" and password "([^"]*)"$`, iRegisterWith)
	ctx.Step(`^I log in with username "([^"]*)" and password "([^"]*)"$`, iLogInWith)
	ctx.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, iAmLoggedInAs)
}

// registerDataSteps registers the data fetch and sync steps.
func registerDataSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^I request my data$`, iRequestMyData)
	ctx.Step(`^I request my data without a token$`, iRequestMyDataWithoutAToken)
	ctx.Step(`^I request my data with token "([^"]*)"$`, iRequestMyDataWithToken)
	ctx.Step(`^I sync the following snapshot:$`, iSyncTheFollowingSnapshot)
}

// registerResponseSteps registers the response assertion steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the data should list the business "([^"]*)"$`, theDataShouldListTheBusiness)
	ctx.Step(`^the data should list the category "([^"]*)"$`, theDataShouldListTheCategory)
	ctx.Step(`^the data should contain (\d+) books?$`, theDataShouldContainBooks)
	ctx.Step(`^the balance of book "([^"]*)" should be (-?\d+(?:\.\d+)?)$`, theBalanceOfBookShouldBe)
}

func (tc *TestContext) send(method, path, token string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	tc.response = resp
	tc.responseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

func (tc *TestContext) authenticate(path, username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	if err := tc.send(http.MethodPost, path, "", body); err != nil {
		return err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(tc.responseBody, &out); err == nil && out.Token != "" {
		tc.token = out.Token
	}
	return nil
}

func (tc *TestContext) parsedBody() (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w. Body: %s", err, tc.responseBody)
	}
	return data, nil
}

// Step implementations

func aRegisteredUserWithPassword(ctx context.Context, username, password string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if err := tc.authenticate("/api/register", username, password); err != nil {
		return err
	}
	if tc.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("setup registration failed with status %d: %s", tc.response.StatusCode, tc.responseBody)
	}
	// The setup token is discarded; scenarios log in explicitly when needed.
	tc.token = ""
	return nil
}

func iRegisterWith(ctx context.Context, username, password string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.authenticate("/api/register", username, password)
}

func iLogInWith(ctx context.Context, username, password string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.authenticate("/api/login", username, password)
}

func iAmLoggedInAs(ctx context.Context, username, password string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if err := tc.authenticate("/api/register", username, password); err != nil {
		return err
	}
	if tc.token == "" {
		return fmt.Errorf("login setup failed with status %d: %s", tc.response.StatusCode, tc.responseBody)
	}
	return nil
}

func iRequestMyData(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(http.MethodGet, "/api/data", tc.token, nil)
}

func iRequestMyDataWithoutAToken(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(http.MethodGet, "/api/data", "", nil)
}

func iRequestMyDataWithToken(ctx context.Context, token string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(http.MethodGet, "/api/data", token, nil)
}

func iSyncTheFollowingSnapshot(ctx context.Context, body *godog.DocString) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(http.MethodPost, "/api/sync", tc.token, []byte(body.Content))
}

func theResponseStatusShouldBe(ctx context.Context, expected int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expected, tc.response.StatusCode, tc.responseBody)
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	data, err := tc.parsedBody()
	if err != nil {
		return err
	}
	value, ok := data[field]
	if !ok {
		return fmt.Errorf("field '%s' not found in response. Body: %s", field, tc.responseBody)
	}
	actual := fmt.Sprintf("%v", value)
	if actual != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	data, err := tc.parsedBody()
	if err != nil {
		return err
	}
	if _, ok := data[field]; !ok {
		return fmt.Errorf("field '%s' not found in response. Body: %s", field, tc.responseBody)
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if !strings.Contains(string(tc.responseBody), expected) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, tc.responseBody)
	}
	return nil
}

func theDataShouldListTheBusiness(ctx context.Context, name string) error {
	return dataListContains(ctx, "businesses", name)
}

func theDataShouldListTheCategory(ctx context.Context, name string) error {
	return dataListContains(ctx, "categories", name)
}

func dataListContains(ctx context.Context, field, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	data, err := tc.parsedBody()
	if err != nil {
		return err
	}
	list, ok := data[field].([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list. Body: %s", field, tc.responseBody)
	}
	for _, item := range list {
		if fmt.Sprintf("%v", item) == name {
			return nil
		}
	}
	return fmt.Errorf("'%s' not found in %s. Body: %s", name, field, tc.responseBody)
}

func theDataShouldContainBooks(ctx context.Context, count int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	data, err := tc.parsedBody()
	if err != nil {
		return err
	}
	books, ok := data["books"].([]any)
	if !ok {
		return fmt.Errorf("field 'books' is not a list. Body: %s", tc.responseBody)
	}
	if len(books) != count {
		return fmt.Errorf("expected %d books, got %d", count, len(books))
	}
	return nil
}

func theBalanceOfBookShouldBe(ctx context.Context, bookName, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	data, err := tc.parsedBody()
	if err != nil {
		return err
	}
	books, ok := data["books"].([]any)
	if !ok {
		return fmt.Errorf("field 'books' is not a list. Body: %s", tc.responseBody)
	}

	want, err := decimal.NewFromString(expected)
	if err != nil {
		return fmt.Errorf("invalid expected balance %q: %w", expected, err)
	}

	for _, raw := range books {
		book, ok := raw.(map[string]any)
		if !ok || fmt.Sprintf("%v", book["name"]) != bookName {
			continue
		}
		balance := decimal.Zero
		if txs, ok := book["transactions"].([]any); ok {
			for _, rawTx := range txs {
				tx, ok := rawTx.(map[string]any)
				if !ok {
					continue
				}
				amount, err := decimal.NewFromString(fmt.Sprintf("%v", tx["amount"]))
				if err != nil {
					return fmt.Errorf("unparseable amount %v: %w", tx["amount"], err)
				}
				balance = balance.Add(amount)
			}
		}
		if !balance.Equal(want) {
			return fmt.Errorf("book '%s': expected balance %s, got %s", bookName, want, balance)
		}
		return nil
	}
	return fmt.Errorf("book '%s' not found. Body: %s", bookName, tc.responseBody)
}
