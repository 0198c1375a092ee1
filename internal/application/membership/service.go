package membership

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/domain/member"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/storefront"
)

// Verification errors carry the user-facing message directly
var (
	ErrMemberNotFound = errors.New("找不到此會員編號，請確認後重試")
	ErrWrongPassword  = errors.New("密碼錯誤，請輸入您的手機號碼")
)

// GraphQLClient is the slice of the storefront client the directory needs
type GraphQLClient interface {
	GraphQL(ctx context.Context, query string, variables map[string]any) (*storefront.GraphQLResponse, error)
}

// Config holds the directory's business settings
type Config struct {
	MetafieldNamespace  string
	MemberCodeKey       string
	ShippingRateKey     string
	DefaultShippingRate int
	AdminPassword       string
	PhonePrefixes       []string
}

// Customer is a verified member with resolved shipping rate
type Customer struct {
	ID           string      `json:"id"`
	Code         member.Code `json:"g_code"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	ShippingRate int         `json:"shipping_rate"`
}

// MemberList is the admin overview of all assigned member codes
type MemberList struct {
	Members     []member.Member `json:"members"`
	Total       int             `json:"total"`
	MaxNumber   int             `json:"max_number"`
	NextCode    member.Code     `json:"next_g_code"`
	DefaultRate int             `json:"default_shipping_rate"`
}

// DirectoryService resolves members from storefront customers. Member
// codes and shipping rates live in customer metafields; there is no
// local database.
type DirectoryService struct {
	api    GraphQLClient
	cfg    Config
	logger *zap.Logger
}

// NewDirectoryService creates a directory over the storefront admin API
func NewDirectoryService(api GraphQLClient, cfg Config, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{api: api, cfg: cfg, logger: logger}
}

// customerNode mirrors the GraphQL customer selection
type customerNode struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CreatedAt      string `json:"createdAt"`
	DefaultAddress *struct {
		Phone string `json:"phone"`
	} `json:"defaultAddress"`
	GCode *struct {
		Value string `json:"value"`
	} `json:"gCode"`
	ShippingRate *struct {
		Value string `json:"value"`
	} `json:"shippingRate"`
}

func (n *customerNode) code() string {
	if n.GCode == nil {
		return ""
	}
	return n.GCode.Value
}

func (n *customerNode) rate() string {
	if n.ShippingRate == nil {
		return ""
	}
	return n.ShippingRate.Value
}

// bestPhone prefers the default address phone over the account phone
func (n *customerNode) bestPhone() string {
	if n.DefaultAddress != nil && n.DefaultAddress.Phone != "" {
		return n.DefaultAddress.Phone
	}
	return n.Phone
}

// listCustomers fetches all customers carrying the member code metafield
func (s *DirectoryService) listCustomers(ctx context.Context) ([]customerNode, error) {
	query := fmt.Sprintf(`{
		customers(first: 100, query: "metafield_namespace:%[1]s metafield_key:%[2]s") {
			edges {
				node {
					id
					firstName
					lastName
					email
					phone
					createdAt
					defaultAddress {
						phone
					}
					gCode: metafield(namespace: "%[1]s", key: "%[2]s") {
						value
					}
					shippingRate: metafield(namespace: "%[1]s", key: "%[3]s") {
						value
					}
				}
			}
		}
	}`, s.cfg.MetafieldNamespace, s.cfg.MemberCodeKey, s.cfg.ShippingRateKey)

	resp, err := s.api.GraphQL(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	if msg := resp.ErrorMessages(); msg != "" {
		return nil, fmt.Errorf("membership: customer query failed: %s", msg)
	}

	var data struct {
		Customers struct {
			Edges []struct {
				Node customerNode `json:"node"`
			} `json:"edges"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("membership: failed to decode customers: %w", err)
	}

	nodes := make([]customerNode, 0, len(data.Customers.Edges))
	for _, edge := range data.Customers.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes, nil
}

// findByCode looks up the customer holding the given member code.
// Returns ErrMemberNotFound when no customer carries it.
func (s *DirectoryService) findByCode(ctx context.Context, code member.Code) (*customerNode, error) {
	nodes, err := s.listCustomers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if nodes[i].code() == code.String() {
			return &nodes[i], nil
		}
	}
	return nil, ErrMemberNotFound
}

// VerifyCustomer checks a member code and phone-number password.
// The resolved shipping rate falls back to the configured default when
// the customer has none set.
func (s *DirectoryService) VerifyCustomer(ctx context.Context, code member.Code, password string) (*Customer, error) {
	node, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !member.VerifyPhone(node.bestPhone(), password, s.cfg.PhonePrefixes) {
		s.logger.Info("member verification failed", zap.String("code", code.String()))
		return nil, ErrWrongPassword
	}

	rate := s.cfg.DefaultShippingRate
	if r, err := strconv.Atoi(node.rate()); err == nil {
		rate = r
	}

	name := member.DisplayName(node.LastName, node.FirstName, node.Email)
	if name == "" {
		name = "會員"
	}

	s.logger.Info("member verified",
		zap.String("code", code.String()),
		zap.Int("shipping_rate", rate),
	)

	return &Customer{
		ID:           member.NumericID(node.ID),
		Code:         code,
		Name:         name,
		Email:        node.Email,
		Phone:        node.bestPhone(),
		ShippingRate: rate,
	}, nil
}

// Members lists every customer with an assigned code, sorted by code,
// together with the next free code for the admin UI to hand out
func (s *DirectoryService) Members(ctx context.Context) (*MemberList, error) {
	nodes, err := s.listCustomers(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]member.Member, 0, len(nodes))
	codes := make([]member.Code, 0, len(nodes))
	maxNumber := 0

	for _, node := range nodes {
		code := node.code()
		if code == "" {
			continue
		}
		c := member.Code(code)
		codes = append(codes, c)
		if n := c.Number(); n > maxNumber {
			maxNumber = n
		}

		members = append(members, member.Member{
			ID:           member.NumericID(node.ID),
			GID:          node.ID,
			Code:         c,
			Name:         member.DisplayName(node.LastName, node.FirstName, node.Email),
			Email:        node.Email,
			Phone:        node.bestPhone(),
			ShippingRate: node.rate(),
			CreatedAt:    node.CreatedAt,
		})
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Code < members[j].Code
	})

	return &MemberList{
		Members:     members,
		Total:       len(members),
		MaxNumber:   maxNumber,
		NextCode:    member.NextCode(codes),
		DefaultRate: s.cfg.DefaultShippingRate,
	}, nil
}

// SetShippingRate writes the per-kg rate metafield on a customer.
// Mutation userErrors are surfaced verbatim as the error message.
func (s *DirectoryService) SetShippingRate(ctx context.Context, customerGID string, rate int) error {
	const mutation = `mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
		metafieldsSet(metafields: $metafields) {
			metafields {
				key
				value
			}
			userErrors {
				field
				message
			}
		}
	}`

	variables := map[string]any{
		"metafields": []map[string]any{
			{
				"ownerId":   customerGID,
				"namespace": s.cfg.MetafieldNamespace,
				"key":       s.cfg.ShippingRateKey,
				"type":      "number_integer",
				"value":     strconv.Itoa(rate),
			},
		},
	}

	resp, err := s.api.GraphQL(ctx, mutation, variables)
	if err != nil {
		return err
	}
	if msg := resp.ErrorMessages(); msg != "" {
		return errors.New(msg)
	}

	var data struct {
		MetafieldsSet struct {
			Metafields []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"metafields"`
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return fmt.Errorf("membership: failed to decode metafieldsSet: %w", err)
	}

	if len(data.MetafieldsSet.UserErrors) > 0 {
		msgs := make([]string, 0, len(data.MetafieldsSet.UserErrors))
		for _, ue := range data.MetafieldsSet.UserErrors {
			msgs = append(msgs, ue.Message)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	if len(data.MetafieldsSet.Metafields) == 0 {
		return errors.New("membership: metafieldsSet returned no metafields")
	}

	s.logger.Info("shipping rate updated",
		zap.String("customer_gid", customerGID),
		zap.Int("rate", rate),
	)
	return nil
}

// VerifyAdmin checks the admin password. An empty configured password
// rejects everything.
func (s *DirectoryService) VerifyAdmin(password string) bool {
	if s.cfg.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
}
