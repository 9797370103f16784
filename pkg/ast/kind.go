package ast

// Kind identifies a node variant. Operators and literals get their own
// kinds so that two nodes compare equal only when they have the same shape,
// which is what the tabular layout check relies on.
type Kind int

// Node kinds.
const (
	KindInvalid Kind = iota

	// Declarations
	KindCompilationUnit
	KindPackage
	KindImport
	KindClass
	KindInterface
	KindEnum
	KindRecord
	KindAnnotationType
	KindEnumConstant
	KindMethod
	KindVariable
	KindModifiers
	KindAnnotation
	KindTypeParameter
	KindModule
	KindRequires
	KindExports
	KindOpens
	KindUses
	KindProvides

	// Statements
	KindBlock
	KindEmptyStatement
	KindExpressionStatement
	KindIf
	KindWhileLoop
	KindDoWhileLoop
	KindForLoop
	KindEnhancedForLoop
	KindLabeledStatement
	KindSwitch
	KindCase
	KindTry
	KindCatch
	KindSynchronized
	KindReturn
	KindThrow
	KindBreak
	KindContinue
	KindYield
	KindAssert

	// Expressions
	KindIdentifier
	KindMemberSelect
	KindMethodInvocation
	KindNewClass
	KindNewArray
	KindArrayAccess
	KindParenthesized
	KindTypeCast
	KindInstanceOf
	KindConditional
	KindLambda
	KindMemberReference
	KindSwitchExpression
	KindAssignment
	KindBindingPattern
	KindDefaultCaseLabel

	// Literals
	KindIntLiteral
	KindLongLiteral
	KindFloatLiteral
	KindDoubleLiteral
	KindBooleanLiteral
	KindCharLiteral
	KindStringLiteral
	KindNullLiteral

	// Unary operators
	KindPostfixIncrement
	KindPostfixDecrement
	KindPrefixIncrement
	KindPrefixDecrement
	KindUnaryPlus
	KindUnaryMinus
	KindBitwiseComplement
	KindLogicalComplement

	// Binary operators
	KindMultiply
	KindDivide
	KindRemainder
	KindPlus
	KindMinus
	KindLeftShift
	KindRightShift
	KindUnsignedRightShift
	KindLessThan
	KindGreaterThan
	KindLessThanEqual
	KindGreaterThanEqual
	KindEqualTo
	KindNotEqualTo
	KindAnd
	KindXor
	KindOr
	KindConditionalAnd
	KindConditionalOr

	// Compound assignments
	KindMultiplyAssignment
	KindDivideAssignment
	KindRemainderAssignment
	KindPlusAssignment
	KindMinusAssignment
	KindLeftShiftAssignment
	KindRightShiftAssignment
	KindUnsignedRightShiftAssignment
	KindAndAssignment
	KindXorAssignment
	KindOrAssignment

	// Types
	KindPrimitiveType
	KindArrayType
	KindParameterizedType
	KindWildcard
	KindUnionType
	KindIntersectionType
	KindAnnotatedType
)

var binaryOps = map[string]Kind{
	"*":   KindMultiply,
	"/":   KindDivide,
	"%":   KindRemainder,
	"+":   KindPlus,
	"-":   KindMinus,
	"<<":  KindLeftShift,
	">>":  KindRightShift,
	">>>": KindUnsignedRightShift,
	"<":   KindLessThan,
	">":   KindGreaterThan,
	"<=":  KindLessThanEqual,
	">=":  KindGreaterThanEqual,
	"==":  KindEqualTo,
	"!=":  KindNotEqualTo,
	"&":   KindAnd,
	"^":   KindXor,
	"|":   KindOr,
	"&&":  KindConditionalAnd,
	"||":  KindConditionalOr,
}

var compoundOps = map[string]Kind{
	"*=":   KindMultiplyAssignment,
	"/=":   KindDivideAssignment,
	"%=":   KindRemainderAssignment,
	"+=":   KindPlusAssignment,
	"-=":   KindMinusAssignment,
	"<<=":  KindLeftShiftAssignment,
	">>=":  KindRightShiftAssignment,
	">>>=": KindUnsignedRightShiftAssignment,
	"&=":   KindAndAssignment,
	"^=":   KindXorAssignment,
	"|=":   KindOrAssignment,
}

// BinaryKind returns the kind for a binary operator spelling.
func BinaryKind(op string) (Kind, bool) {
	k, ok := binaryOps[op]
	return k, ok
}

// CompoundKind returns the kind for a compound assignment spelling.
func CompoundKind(op string) (Kind, bool) {
	k, ok := compoundOps[op]
	return k, ok
}

// Precedence returns the binding strength of a binary operator kind; larger
// binds tighter. instanceof shares the relational level.
func Precedence(k Kind) int {
	switch k {
	case KindMultiply, KindDivide, KindRemainder:
		return 10
	case KindPlus, KindMinus:
		return 9
	case KindLeftShift, KindRightShift, KindUnsignedRightShift:
		return 8
	case KindLessThan, KindGreaterThan, KindLessThanEqual, KindGreaterThanEqual, KindInstanceOf:
		return 7
	case KindEqualTo, KindNotEqualTo:
		return 6
	case KindAnd:
		return 5
	case KindXor:
		return 4
	case KindOr:
		return 3
	case KindConditionalAnd:
		return 2
	case KindConditionalOr:
		return 1
	}
	return 0
}

// IsLiteral reports whether k is a literal kind.
func (k Kind) IsLiteral() bool {
	return k >= KindIntLiteral && k <= KindNullLiteral
}

// IsExpression reports whether nodes of kind k are expressions in the
// sense used for traversal bookkeeping. Type nodes are not expressions.
func (k Kind) IsExpression() bool {
	switch {
	case k >= KindIdentifier && k <= KindDefaultCaseLabel:
		return k != KindBindingPattern && k != KindDefaultCaseLabel
	case k >= KindIntLiteral && k <= KindOrAssignment:
		return true
	}
	return false
}
