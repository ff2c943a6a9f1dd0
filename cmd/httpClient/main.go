package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Demo OAuth2 client driving the authorization-code flow end to end against
// the server: register, send the browser to /authorize, exchange the code on
// the callback, fetch /userinfo.

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthServer   string
}

var config Config

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	config = Config{
		ClientID:     os.Getenv("CLIENT_ID"),
		ClientSecret: os.Getenv("CLIENT_SECRET"),
		RedirectURI:  os.Getenv("REDIRECT_URI"),
		AuthServer:   os.Getenv("AUTH_SERVER"),
	}
	if config.RedirectURI == "" {
		config.RedirectURI = "http://localhost:8081/callback"
	}
	if config.AuthServer == "" {
		config.AuthServer = "http://localhost:8080"
	}
	if config.ClientID == "" {
		registerClient()
	}
}

func main() {
	http.HandleFunc("/", authorizeHandler)
	http.HandleFunc("/callback", callbackHandler)
	log.Printf("Demo client listening on :8081")
	log.Fatal(http.ListenAndServe(":8081", nil))
}

func registerClient() {
	reqBody := fmt.Sprintf(`{"name":"HTTP Client","redirectUris":[%q],"allowedGrantTypes":["authorization_code","refresh_token"]}`, config.RedirectURI)
	resp, err := http.Post(config.AuthServer+"/clients", "application/json", strings.NewReader(reqBody))
	if err != nil {
		log.Fatalf("Failed to register client: %v", err)
	}
	defer resp.Body.Close()

	var regResp struct {
		ClientID     string `json:"clientId"`
		ClientSecret string `json:"clientSecret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&regResp); err != nil {
		log.Fatalf("Failed to decode registration response: %v", err)
	}
	config.ClientID = regResp.ClientID
	config.ClientSecret = regResp.ClientSecret
	log.Printf("Client registered: ClientID=%s", config.ClientID)

	f, err := os.OpenFile(".env", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(f, "CLIENT_ID=%s\nCLIENT_SECRET=%s\n", config.ClientID, config.ClientSecret)
		f.Close()
	}
}

func authorizeHandler(w http.ResponseWriter, r *http.Request) {
	params := url.Values{
		"client_id":     {config.ClientID},
		"redirect_uri":  {config.RedirectURI},
		"response_type": {"code"},
		"state":         {"xyz123"},
		"scope":         {"profile"},
	}
	http.Redirect(w, r, config.AuthServer+"/authorize?"+params.Encode(), http.StatusFound)
}

func callbackHandler(w http.ResponseWriter, r *http.Request) {
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		http.Error(w, fmt.Sprintf("Authorization failed: %s (%s)", errCode, r.URL.Query().Get("error_description")), http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state", http.StatusBadRequest)
		return
	}

	accessToken, err := exchangeCodeForToken(code)
	if err != nil {
		http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
		return
	}

	claims, err := fetchUserInfo(accessToken)
	if err != nil {
		http.Error(w, fmt.Sprintf("Userinfo failed: %v", err), http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "Access token: %s\nUser: %s", accessToken, claims)
}

func exchangeCodeForToken(code string) (string, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {config.RedirectURI},
	}
	req, err := http.NewRequest(http.MethodPost, config.AuthServer+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(config.ClientID, config.ClientSecret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	return tokenResp.AccessToken, nil
}

func fetchUserInfo(accessToken string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, config.AuthServer+"/userinfo", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned %s", resp.Status)
	}

	var claims struct {
		Sub      string `json:"sub"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s)", claims.Username, claims.Sub), nil
}
