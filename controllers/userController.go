package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"foodbuddies/auth"
	"foodbuddies/models"
	"foodbuddies/utils"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var (
	db           *sqlx.DB
	QB           = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	otpService   *auth.OTPService
	tokenService *auth.TokenService
)

func SetDB(database *sqlx.DB) {
	db = database
}

func SetAuthServices(otp *auth.OTPService, tokens *auth.TokenService) {
	otpService = otp
	tokenService = tokens
}

func OtpLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	code, challenge := otpService.Create(body.Phone)

	// SMS delivery is an external collaborator; the code only goes to the log.
	log.Printf("OTP for %s is %s", body.Phone, code)

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Success",
		"data":    challenge,
	})
}

func VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
		Hash  string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" || body.OTP == "" || body.Hash == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone, otp and hash are required")
		return
	}

	if err := otpService.Verify(body.Phone, body.OTP, body.Hash); err != nil {
		utils.HandleError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := tokenService.Issue(body.Phone)
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to issue token")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Success",
		"token":   token,
	})
}

// CheckUserType classifies a phone as seller, buyer or none. A phone present
// in both tables counts as a seller.
func CheckUserType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	var phone string
	query, args, err := QB.Select("seller_phone").From("sellers").Where(squirrel.Eq{"seller_phone": body.Phone}).ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "An error occurred while checking user type.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if err := db.Get(&phone, query, args...); err == nil {
		utils.SendJSONResponse(w, http.StatusOK, map[string]string{"userType": "seller"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		utils.HandleError(w, http.StatusInternalServerError, "An error occurred while checking user type.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	query, args, err = QB.Select("buyer_phone").From("buyers").Where(squirrel.Eq{"buyer_phone": body.Phone}).ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "An error occurred while checking user type.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if err := db.Get(&phone, query, args...); err == nil {
		utils.SendJSONResponse(w, http.StatusOK, map[string]string{"userType": "buyer"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		utils.HandleError(w, http.StatusInternalServerError, "An error occurred while checking user type.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"userType": "none"})
}

func GetCommunities(w http.ResponseWriter, r *http.Request) {
	query, args, err := QB.Select("community_name").From("communities").ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch communities.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	communities := []models.Community{}
	if err := db.Select(&communities, query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch communities.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, communities)
}
